package stack

import (
	"fmt"
	"sort"
)

// Fault is a deliberate corruption used to drill the detection paths. An
// injected fault changes the stack without resealing its checksums, the way
// a stray write would.
type Fault int

const (
	FaultStructHead Fault = iota + 1
	FaultStructTail
	FaultStructChecksum
	FaultDataLeading
	FaultDataTrailing
	FaultStaleSlot
	FaultSizeOverflow
	FaultSizeNegative
	FaultCapacity
)

// overrunPattern is what a runaway writer typically leaves behind.
const overrunPattern uint32 = 0x41414141

var faultNames = map[Fault]string{
	FaultStructHead:     "struct-head",
	FaultStructTail:     "struct-tail",
	FaultStructChecksum: "struct-checksum",
	FaultDataLeading:    "data-leading",
	FaultDataTrailing:   "data-trailing",
	FaultStaleSlot:      "stale-slot",
	FaultSizeOverflow:   "size-overflow",
	FaultSizeNegative:   "size-negative",
	FaultCapacity:       "capacity",
}

var faultDescriptions = map[Fault]string{
	FaultStructHead:     "overwrite the sentinel before the bookkeeping fields",
	FaultStructTail:     "overwrite the sentinel after the bookkeeping fields",
	FaultStructChecksum: "flip a bit in the stored struct checksum",
	FaultDataLeading:    "overrun into the sentinel before the first slot",
	FaultDataTrailing:   "overrun into the sentinel after the last slot",
	FaultStaleSlot:      "scribble over the last slot without updating checksums",
	FaultSizeOverflow:   "set size past capacity",
	FaultSizeNegative:   "set size to -1",
	FaultCapacity:       "set capacity to zero",
}

func (f Fault) String() string {
	if name, ok := faultNames[f]; ok {
		return name
	}
	return fmt.Sprintf("fault(%d)", int(f))
}

// Description says what the fault does to the stack.
func (f Fault) Description() string {
	return faultDescriptions[f]
}

// Faults lists every fault in declaration order.
func Faults() []Fault {
	faults := make([]Fault, 0, len(faultNames))
	for f := range faultNames {
		faults = append(faults, f)
	}
	sort.Slice(faults, func(i, j int) bool {
		return faults[i] < faults[j]
	})
	return faults
}

func ParseFault(name string) (Fault, error) {
	for f, n := range faultNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown fault: %s", name)
}

// Inject applies f to the stack. Faults on the data region need a buffer.
func (s *Stack[T]) Inject(f Fault) error {
	if s == nil {
		return fmt.Errorf("inject %s: %w", f, ErrNullTarget)
	}

	switch f {
	case FaultStructHead:
		s.head ^= ^uint32(0)
	case FaultStructTail:
		s.tail ^= ^uint32(0)
	case FaultStructChecksum:
		s.sums.structSum ^= 1
	case FaultDataLeading, FaultDataTrailing, FaultStaleSlot:
		if s.buf == nil || len(s.buf.data) == 0 {
			return s.refuse("inject "+f.String(), BufferNull)
		}
		switch f {
		case FaultDataLeading:
			s.buf.leading = overrunPattern
		case FaultDataTrailing:
			s.buf.trailing = overrunPattern
		default:
			raw := rawBytes(s.buf.data)
			raw[len(raw)-1] ^= 0xff
		}
	case FaultSizeOverflow:
		s.size = s.capacity + 1
	case FaultSizeNegative:
		s.size = -1
	case FaultCapacity:
		s.capacity = 0
	default:
		return fmt.Errorf("inject: unknown fault %d", int(f))
	}

	s.log().Debug("fault injected", "type", s.typeName(), "fault", f.String())
	return nil
}
