package stack

import (
	"fmt"
	"io"
)

// Dump writes a human-readable description of the stack to w: a header, the
// violation if any, bookkeeping, and the live elements. Pass Unknown to have
// Dump validate first. Dump never modifies the stack.
func (s *Stack[T]) Dump(w io.Writer, result Violation) {
	if result == Unknown {
		result = s.Check()
	}

	fmt.Fprintf(w, "Stack of type [%s] [%p]\n", s.typeName(), s)
	if result != OK {
		fmt.Fprintf(w, "Validation found error #%d (%s)\n", int(result), result)
	}
	if s == nil || result == HandleNull {
		return
	}

	fmt.Fprintf(w, "  Protection: %s\n", s.level)
	fmt.Fprintf(w, "  State:    %s\n", s.state)
	fmt.Fprintf(w, "  Data:     %#x\n", s.dataAddress())
	fmt.Fprintf(w, "  Size:     %d\n", s.size)
	fmt.Fprintf(w, "  Capacity: %d\n", s.capacity)
	if s.buf == nil || result == BufferNull {
		return
	}
	if s.boundary().enabled() {
		fmt.Fprintf(w, "  Leading:  0x%08x\n", s.buf.leading)
		fmt.Fprintf(w, "  Trailing: 0x%08x\n", s.buf.trailing)
	}

	render := s.renderer()
	n := min(s.size, s.capacity, len(s.buf.data))
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "    #%2d: %s\n", i, render(s.buf.data[i]))
	}
}
