package workbench

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/mholzen/guardstack/pkg/stack"
)

type OpKind string

const (
	OpInit     OpKind = "init"
	OpPush     OpKind = "push"
	OpPop      OpKind = "pop"
	OpTop      OpKind = "top"
	OpValidate OpKind = "validate"
	OpDestroy  OpKind = "destroy"
	OpDump     OpKind = "dump"
	OpInject   OpKind = "inject"
)

// Op is one step of a script, written as "kind" or "kind:arg".
type Op struct {
	Kind OpKind `json:"op"`
	Arg  string `json:"arg,omitempty"`
}

func (o Op) String() string {
	if o.Arg == "" {
		return string(o.Kind)
	}
	return string(o.Kind) + ":" + o.Arg
}

// ParseOp parses a single token such as "push:10", "init=5" or "pop".
func ParseOp(token string) (Op, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(token), ":")
	if k, a, found := strings.Cut(kind, "="); found {
		kind, arg = k, a
	}
	op := Op{Kind: OpKind(strings.ToLower(kind)), Arg: strings.TrimSpace(arg)}

	switch op.Kind {
	case OpInit:
		if _, err := strconv.Atoi(op.Arg); err != nil {
			return Op{}, fmt.Errorf("init needs a numeric capacity: %q", token)
		}
	case OpPush:
		if op.Arg == "" {
			return Op{}, fmt.Errorf("push needs a value: %q", token)
		}
	case OpInject:
		if _, err := stack.ParseFault(op.Arg); err != nil {
			return Op{}, fmt.Errorf("inject: %w", err)
		}
	case OpPop, OpTop, OpValidate, OpDestroy, OpDump:
		if op.Arg != "" {
			return Op{}, fmt.Errorf("%s takes no argument: %q", op.Kind, token)
		}
	default:
		return Op{}, fmt.Errorf("unknown operation: %q", token)
	}
	return op, nil
}

func ParseOps(tokens []string) ([]Op, error) {
	ops := make([]Op, 0, len(tokens))
	for _, token := range tokens {
		op, err := ParseOp(token)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ParseScript reads whitespace-separated operations. Everything after '#'
// on a line is a comment.
func ParseScript(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text, _, _ := strings.Cut(scanner.Text(), "#")
		parsed, err := ParseOps(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, parsed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read script: %w", err)
	}
	return ops, nil
}

// LoadScript parses the script stored at path on fs.
func LoadScript(fs afero.Fs, path string) ([]Op, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open script: %w", err)
	}
	defer f.Close()

	ops, err := ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ops, nil
}

// Step records the outcome of one operation.
type Step struct {
	Op     string `json:"op"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s Step) Failed() bool {
	return s.Error != ""
}

func (s Step) String() string {
	if s.Failed() {
		return s.Op + " -> error: " + s.Error
	}
	return s.Op + " -> " + s.Result
}

// Run applies every op in order and records each outcome. A failing op does
// not stop the run. Dump ops write to dump.
func Run(session Session, ops []Op, dump io.Writer) []Step {
	steps := make([]Step, 0, len(ops))
	for _, op := range ops {
		result, err := apply(session, op, dump)
		step := Step{Op: op.String(), Result: result}
		if err != nil {
			step.Result = ""
			step.Error = err.Error()
		}
		steps = append(steps, step)
	}
	return steps
}

func apply(session Session, op Op, dump io.Writer) (string, error) {
	switch op.Kind {
	case OpInit:
		capacity, err := strconv.Atoi(op.Arg)
		if err != nil {
			return "", err
		}
		return "ok", session.Init(capacity)
	case OpPush:
		return "ok", session.Push(op.Arg)
	case OpPop:
		return session.Pop()
	case OpTop:
		return session.Top()
	case OpValidate:
		return session.Validate().String(), nil
	case OpDestroy:
		return "ok", session.Destroy()
	case OpDump:
		session.Dump(dump)
		return "dumped", nil
	case OpInject:
		fault, err := stack.ParseFault(op.Arg)
		if err != nil {
			return "", err
		}
		return "injected", session.Inject(fault)
	}
	return "", fmt.Errorf("unknown operation: %s", op.Kind)
}
