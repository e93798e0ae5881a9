package stack

import "fmt"

// Violation names the first broken invariant found by validation.
type Violation int

const (
	// Unknown asks Dump to run a fresh validation. Validate never returns it.
	Unknown Violation = iota - 1
	OK
	HandleNull
	StructBoundaryCorrupted
	StructChecksumMismatch
	BufferNull
	BufferDestroyed
	CapacityInvalid
	DataBoundaryCorrupted
	ContentChecksumMismatch
	SizeExceedsCapacity
	SizeNegative
)

var violationNames = map[Violation]string{
	Unknown:                 "unknown",
	OK:                      "ok",
	HandleNull:              "handle is nil",
	StructBoundaryCorrupted: "struct boundary corrupted",
	StructChecksumMismatch:  "struct checksum mismatch",
	BufferNull:              "buffer is nil",
	BufferDestroyed:         "buffer destroyed",
	CapacityInvalid:         "capacity is not positive",
	DataBoundaryCorrupted:   "data boundary corrupted",
	ContentChecksumMismatch: "content checksum mismatch",
	SizeExceedsCapacity:     "size exceeds capacity",
	SizeNegative:            "size is negative",
}

func (v Violation) String() string {
	if name, ok := violationNames[v]; ok {
		return name
	}
	return fmt.Sprintf("violation(%d)", int(v))
}

// Validate checks the invariants in order and returns the first violation,
// or OK. Any violation is dumped to the diagnostics writer and logged.
func (s *Stack[T]) Validate() Violation {
	v := s.Check()
	if v != OK {
		s.log().Warn("stack validation failed", "type", s.typeName(), "violation", v.String())
		s.Dump(s.diagnosticsWriter(), v)
	}
	return v
}

// Check runs the same ordered checks as Validate without dumping or logging.
func (s *Stack[T]) Check() Violation {
	if s == nil {
		return HandleNull
	}
	guard, codec := s.boundary(), s.integrity()

	switch {
	case !guard.intact(s.head, s.tail, StructSentinel):
		return StructBoundaryCorrupted
	case !codec.structIntact(s.sums, s.StructChecksum):
		return StructChecksumMismatch
	case s.state == Destroyed:
		return BufferDestroyed
	case s.buf == nil:
		return BufferNull
	case s.capacity <= 0:
		return CapacityInvalid
	case !guard.intact(s.buf.leading, s.buf.trailing, DataSentinel):
		return DataBoundaryCorrupted
	case !codec.contentIntact(s.sums, s.ContentChecksum):
		return ContentChecksumMismatch
	case s.size > s.capacity:
		return SizeExceedsCapacity
	case s.size < 0:
		return SizeNegative
	}
	return OK
}
