// Package workbench drives integrity-checked stacks from text: a Session
// hides the element type behind string values, and scripts of operations
// can be run against it.
package workbench

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mholzen/guardstack/pkg/format"
	"github.com/mholzen/guardstack/pkg/protection"
	"github.com/mholzen/guardstack/pkg/stack"
)

const DefaultType = "int64"

// Config selects the element type and protections of a new session.
type Config struct {
	Type        string
	Protection  protection.Level
	Render      string
	Diagnostics io.Writer
	Logger      *slog.Logger
	MaxBytes    int
}

// Session is a stack of some element type, driven through string values.
type Session interface {
	Type() string
	Protection() protection.Level
	Init(capacity int) error
	Push(raw string) error
	Pop() (string, error)
	Top() (string, error)
	Validate() stack.Violation
	Destroy() error
	Inject(f stack.Fault) error
	Dump(w io.Writer)
	Snapshot() Snapshot
}

// Snapshot is a read-only view of a session, suitable for JSON output.
type Snapshot struct {
	Type                  string   `json:"type"`
	Protection            string   `json:"protection"`
	State                 string   `json:"state"`
	Size                  int      `json:"size"`
	Capacity              int      `json:"capacity"`
	StoredStructChecksum  uint32   `json:"stored_struct_checksum"`
	StoredContentChecksum uint32   `json:"stored_content_checksum"`
	StructChecksum        uint32   `json:"struct_checksum"`
	ContentChecksum       uint32   `json:"content_checksum"`
	Violation             string   `json:"violation"`
	Elements              []string `json:"elements"`
}

var types = []string{
	"int8", "int16", "int32", "int64", "int",
	"uint8", "uint16", "uint32", "uint64", "uint",
	"float32", "float64",
}

// Types lists the element types New accepts.
func Types() []string {
	return append([]string(nil), types...)
}

// New builds an uninitialized session. An empty Type means DefaultType.
func New(cfg Config) (Session, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Type))
	if name == "" {
		name = DefaultType
	}

	switch name {
	case "int8":
		return newTyped(name, cfg, parseSigned[int8](8))
	case "int16":
		return newTyped(name, cfg, parseSigned[int16](16))
	case "int32":
		return newTyped(name, cfg, parseSigned[int32](32))
	case "int64":
		return newTyped(name, cfg, parseSigned[int64](64))
	case "int":
		return newTyped(name, cfg, parseSigned[int](strconv.IntSize))
	case "uint8":
		return newTyped(name, cfg, parseUnsigned[uint8](8))
	case "uint16":
		return newTyped(name, cfg, parseUnsigned[uint16](16))
	case "uint32":
		return newTyped(name, cfg, parseUnsigned[uint32](32))
	case "uint64":
		return newTyped(name, cfg, parseUnsigned[uint64](64))
	case "uint":
		return newTyped(name, cfg, parseUnsigned[uint](strconv.IntSize))
	case "float32":
		return newTyped(name, cfg, parseFloat[float32](32))
	case "float64":
		return newTyped(name, cfg, parseFloat[float64](64))
	}
	return nil, fmt.Errorf("unsupported element type %q (expected one of: %s)", cfg.Type, strings.Join(types, ", "))
}

func parseSigned[T ~int8 | ~int16 | ~int32 | ~int64 | ~int](bits int) func(string) (T, error) {
	return func(raw string) (T, error) {
		n, err := strconv.ParseInt(raw, 0, bits)
		return T(n), err
	}
}

func parseUnsigned[T ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint](bits int) func(string) (T, error) {
	return func(raw string) (T, error) {
		n, err := strconv.ParseUint(raw, 0, bits)
		return T(n), err
	}
}

func parseFloat[T ~float32 | ~float64](bits int) func(string) (T, error) {
	return func(raw string) (T, error) {
		f, err := strconv.ParseFloat(raw, bits)
		return T(f), err
	}
}

type typedSession[T stack.Element] struct {
	name   string
	stack  *stack.Stack[T]
	parse  func(string) (T, error)
	render format.Renderer[T]
}

func newTyped[T stack.Element](name string, cfg Config, parse func(string) (T, error)) (Session, error) {
	render, err := format.Lookup[T](cfg.Render)
	if err != nil {
		return nil, err
	}

	opts := []stack.Option{stack.WithProtection(cfg.Protection)}
	if cfg.Diagnostics != nil {
		opts = append(opts, stack.WithDiagnostics(cfg.Diagnostics))
	}
	if cfg.Logger != nil {
		opts = append(opts, stack.WithLogger(cfg.Logger))
	}
	if cfg.MaxBytes > 0 {
		opts = append(opts, stack.WithMaxBytes(cfg.MaxBytes))
	}

	return &typedSession[T]{
		name:   name,
		stack:  stack.New[T](render, opts...),
		parse:  parse,
		render: render,
	}, nil
}

func (s *typedSession[T]) Type() string {
	return s.name
}

func (s *typedSession[T]) Protection() protection.Level {
	return s.stack.Level()
}

func (s *typedSession[T]) Init(capacity int) error {
	return s.stack.Init(capacity)
}

func (s *typedSession[T]) Push(raw string) error {
	v, err := s.parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("cannot parse %q as %s: %w", raw, s.name, err)
	}
	return s.stack.Push(v)
}

func (s *typedSession[T]) Pop() (string, error) {
	v, err := s.stack.Pop()
	if err != nil {
		return "", err
	}
	return s.render(v), nil
}

func (s *typedSession[T]) Top() (string, error) {
	v, err := s.stack.Top()
	if err != nil {
		return "", err
	}
	return s.render(v), nil
}

func (s *typedSession[T]) Validate() stack.Violation {
	return s.stack.Validate()
}

func (s *typedSession[T]) Destroy() error {
	return s.stack.Destroy()
}

func (s *typedSession[T]) Inject(f stack.Fault) error {
	return s.stack.Inject(f)
}

func (s *typedSession[T]) Dump(w io.Writer) {
	s.stack.Dump(w, stack.Unknown)
}

func (s *typedSession[T]) Snapshot() Snapshot {
	structSum, contentSum := s.stack.StoredChecksums()
	return Snapshot{
		Type:                  s.name,
		Protection:            s.stack.Level().String(),
		State:                 s.stack.State().String(),
		Size:                  s.stack.Size(),
		Capacity:              s.stack.Capacity(),
		StoredStructChecksum:  structSum,
		StoredContentChecksum: contentSum,
		StructChecksum:        s.stack.StructChecksum(),
		ContentChecksum:       s.stack.ContentChecksum(),
		Violation:             s.stack.Check().String(),
		Elements: lo.Map(s.stack.Elements(), func(v T, _ int) string {
			return s.render(v)
		}),
	}
}
