package stack

import (
	"errors"
	"fmt"
)

var (
	ErrNullTarget      = errors.New("stack is nil")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidState    = errors.New("stack failed validation")
	ErrOverflow        = errors.New("stack overflow")
	ErrUnderflow       = errors.New("stack underflow")
	ErrNullOutput      = errors.New("output pointer is nil")
	ErrOutOfMemory     = errors.New("buffer allocation exceeds limit")
)

// ValidationError reports an operation refused because the stack failed
// validation. It matches ErrInvalidState with errors.Is.
type ValidationError struct {
	Op        string
	Violation Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrInvalidState, e.Violation)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidState
}
