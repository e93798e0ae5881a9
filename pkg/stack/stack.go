// Package stack implements a fixed-capacity LIFO stack that verifies its own
// integrity. Depending on its protection level it brackets its bookkeeping
// and storage with sentinel words, keeps checksums of both, and validates
// itself before every mutation, so corruption is reported at the moment of
// access instead of propagating.
package stack

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/mholzen/guardstack/pkg/poison"
	"github.com/mholzen/guardstack/pkg/protection"
)

// DefaultMaxBytes caps a single buffer allocation unless WithMaxBytes says otherwise.
const DefaultMaxBytes = 1 << 30

// State is the lifecycle of a stack.
type State uint8

const (
	Uninitialized State = iota
	Live
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Live:
		return "live"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Stack is a fixed-capacity stack of T. The zero value is an uninitialized
// stack without protections; use New to pick a protection level.
//
// A Stack is not safe for concurrent use.
type Stack[T Element] struct {
	head     uint32
	sums     checksums
	size     int
	capacity int
	state    State
	buf      *region[T]
	tail     uint32

	level       protection.Level
	guard       boundaryGuard
	codec       integrityCodec
	render      func(T) string
	diagnostics io.Writer
	logger      *slog.Logger
	maxBytes    int
}

type config struct {
	level       protection.Level
	diagnostics io.Writer
	logger      *slog.Logger
	maxBytes    int
}

type Option func(*config)

// WithProtection sets the protection level for the lifetime of the stack.
func WithProtection(level protection.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithDiagnostics sets where dumps go when validation fails. Defaults to os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(c *config) {
		c.diagnostics = w
	}
}

// WithLogger sets the logger for lifecycle and validation events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxBytes limits the size of the buffer allocation, sentinels included.
func WithMaxBytes(n int) Option {
	return func(c *config) {
		c.maxBytes = n
	}
}

// New returns an uninitialized stack. render turns one element into text for
// diagnostic dumps; nil renders with fmt.Sprint.
func New[T Element](render func(T) string, opts ...Option) *Stack[T] {
	cfg := config{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Stack[T]{
		level:       cfg.level,
		guard:       guardFor(cfg.level),
		codec:       codecFor(cfg.level),
		render:      render,
		diagnostics: cfg.diagnostics,
		logger:      cfg.logger,
		maxBytes:    cfg.maxBytes,
	}
}

// Init allocates room for capacity elements, poisons every slot and empties
// the stack. Calling Init on a live stack replaces its buffer.
func (s *Stack[T]) Init(capacity int) error {
	if s == nil {
		return fmt.Errorf("init: %w", ErrNullTarget)
	}
	if capacity <= 0 {
		return fmt.Errorf("init: %w (got %d)", ErrInvalidCapacity, capacity)
	}

	guard := s.boundary()
	width := widthOf[T]()
	limit := s.maxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if capacity > (math.MaxInt-guard.overhead())/width || capacity*width+guard.overhead() > limit {
		return fmt.Errorf("init: %w (%d elements of %d bytes, limit %d bytes)", ErrOutOfMemory, capacity, width, limit)
	}

	buf := &region[T]{data: make([]T, capacity)}
	guard.seal(&buf.leading, &buf.trailing, DataSentinel)
	poison.Fill(rawBytes(buf.data), width)

	guard.seal(&s.head, &s.tail, StructSentinel)
	s.buf = buf
	s.size = 0
	s.capacity = capacity
	s.state = Live
	s.reseal()

	s.log().Debug("stack initialized", "type", s.typeName(), "capacity", capacity, "protection", s.level.String())
	return nil
}

// Destroy releases the buffer. Any later use is refused by validation.
// Destroying a stack that is not live is always an error.
func (s *Stack[T]) Destroy() error {
	if err := s.precheck("destroy"); err != nil {
		return err
	}
	if s.state != Live || s.buf == nil {
		return s.refuse("destroy", BufferNull)
	}

	s.buf = nil
	s.size = 0
	s.capacity = -1
	s.state = Destroyed
	s.reseal()

	s.log().Debug("stack destroyed", "type", s.typeName())
	return nil
}

// Push places v on top of the stack.
func (s *Stack[T]) Push(v T) error {
	if err := s.precheck("push"); err != nil {
		return err
	}
	if s.size >= s.capacity {
		return fmt.Errorf("push: %w (capacity %d)", ErrOverflow, s.capacity)
	}
	if s.buf == nil || s.size < 0 || s.size >= len(s.buf.data) {
		return s.refuse("push", SizeExceedsCapacity)
	}

	s.buf.data[s.size] = v
	s.size++
	s.reseal()
	return nil
}

// Pop removes and returns the top element. The vacated slot keeps its bytes.
func (s *Stack[T]) Pop() (T, error) {
	if err := s.precheck("pop"); err != nil {
		var zero T
		return zero, err
	}
	return s.take("pop", true)
}

// PopInto pops into dst, failing with ErrNullOutput when dst is nil.
func (s *Stack[T]) PopInto(dst *T) error {
	if err := s.precheck("pop"); err != nil {
		return err
	}
	if dst == nil {
		return fmt.Errorf("pop: %w", ErrNullOutput)
	}
	v, err := s.take("pop", true)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Top returns the top element without removing it.
func (s *Stack[T]) Top() (T, error) {
	if err := s.precheck("top"); err != nil {
		var zero T
		return zero, err
	}
	return s.take("top", false)
}

func (s *Stack[T]) take(op string, remove bool) (T, error) {
	var zero T
	if s.size == 0 {
		return zero, fmt.Errorf("%s: %w", op, ErrUnderflow)
	}
	if s.buf == nil || s.size < 0 || s.size > len(s.buf.data) {
		return zero, s.refuse(op, SizeExceedsCapacity)
	}

	v := s.buf.data[s.size-1]
	if remove {
		s.size--
		s.reseal()
	}
	return v, nil
}

// precheck validates before an operation when Dump is on. A nil stack is
// always refused.
func (s *Stack[T]) precheck(op string) error {
	if s == nil {
		return &ValidationError{Op: op, Violation: s.Validate()}
	}
	if !s.level.Has(protection.Dump) {
		return nil
	}
	if v := s.Validate(); v != OK {
		return &ValidationError{Op: op, Violation: v}
	}
	return nil
}

// refuse reports an operation that cannot proceed on the current state,
// naming the first violation found or fallback when none is.
func (s *Stack[T]) refuse(op string, fallback Violation) error {
	v := s.Check()
	if v == OK {
		v = fallback
	}
	return &ValidationError{Op: op, Violation: v}
}

func (s *Stack[T]) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

func (s *Stack[T]) Capacity() int {
	if s == nil {
		return 0
	}
	return s.capacity
}

func (s *Stack[T]) State() State {
	if s == nil {
		return Uninitialized
	}
	return s.state
}

func (s *Stack[T]) Level() protection.Level {
	if s == nil {
		return protection.None
	}
	return s.level
}

// StoredChecksums returns the checksums recorded at the last mutation. Both
// are zero when hashing is off.
func (s *Stack[T]) StoredChecksums() (structSum, contentSum uint32) {
	if s == nil {
		return 0, 0
	}
	return s.sums.structSum, s.sums.contentSum
}

// Elements returns a copy of the live elements, bottom first.
func (s *Stack[T]) Elements() []T {
	if s == nil || s.buf == nil {
		return nil
	}
	n := min(max(s.size, 0), s.capacity, len(s.buf.data))
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	copy(out, s.buf.data[:n])
	return out
}

func (s *Stack[T]) boundary() boundaryGuard {
	if s.guard == nil {
		return nullGuard{}
	}
	return s.guard
}

func (s *Stack[T]) integrity() integrityCodec {
	if s.codec == nil {
		return nullCodec{}
	}
	return s.codec
}

func (s *Stack[T]) renderer() func(T) string {
	if s.render == nil {
		return func(v T) string { return fmt.Sprint(v) }
	}
	return s.render
}

func (s *Stack[T]) diagnosticsWriter() io.Writer {
	if s == nil || s.diagnostics == nil {
		return os.Stderr
	}
	return s.diagnostics
}

func (s *Stack[T]) log() *slog.Logger {
	if s == nil || s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Stack[T]) dataAddress() uintptr {
	if s.buf == nil {
		return 0
	}
	return addressOf(s.buf.data)
}

func (s *Stack[T]) typeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
