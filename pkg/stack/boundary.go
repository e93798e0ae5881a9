package stack

import "github.com/mholzen/guardstack/pkg/protection"

const (
	// StructSentinel brackets the bookkeeping fields.
	StructSentinel uint32 = 0x0BADF00D
	// DataSentinel brackets the data region.
	DataSentinel uint32 = 0x0D15EA5E

	sentinelWidth = 4
)

// region is the owned backing storage: a sentinel word on each side of the
// usable slots.
type region[T Element] struct {
	leading  uint32
	data     []T
	trailing uint32
}

type boundaryGuard interface {
	enabled() bool
	// overhead is the number of bytes the guard adds to an allocation.
	overhead() int
	seal(head, tail *uint32, marker uint32)
	intact(head, tail, marker uint32) bool
}

type sentinelGuard struct{}

func (sentinelGuard) enabled() bool { return true }

func (sentinelGuard) overhead() int { return 2 * sentinelWidth }

func (sentinelGuard) seal(head, tail *uint32, marker uint32) {
	*head = marker
	*tail = marker
}

func (sentinelGuard) intact(head, tail, marker uint32) bool {
	return head == marker && tail == marker
}

type nullGuard struct{}

func (nullGuard) enabled() bool { return false }
func (nullGuard) overhead() int { return 0 }
func (nullGuard) seal(_, _ *uint32, _ uint32) {}
func (nullGuard) intact(_, _, _ uint32) bool { return true }

func guardFor(level protection.Level) boundaryGuard {
	if level.Has(protection.Boundary) {
		return sentinelGuard{}
	}
	return nullGuard{}
}
