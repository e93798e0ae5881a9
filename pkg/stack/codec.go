package stack

import (
	"encoding/binary"

	"github.com/mholzen/guardstack/pkg/checksum"
	"github.com/mholzen/guardstack/pkg/protection"
)

// checksums are stored inside the bookkeeping but never hashed themselves.
type checksums struct {
	structSum  uint32
	contentSum uint32
}

type integrityCodec interface {
	seal(stored *checksums, structSum, contentSum func() uint32)
	structIntact(stored checksums, structSum func() uint32) bool
	contentIntact(stored checksums, contentSum func() uint32) bool
}

type rollingCodec struct{}

func (rollingCodec) seal(stored *checksums, structSum, contentSum func() uint32) {
	stored.structSum = structSum()
	stored.contentSum = contentSum()
}

func (rollingCodec) structIntact(stored checksums, structSum func() uint32) bool {
	return stored.structSum == structSum()
}

func (rollingCodec) contentIntact(stored checksums, contentSum func() uint32) bool {
	return stored.contentSum == contentSum()
}

type nullCodec struct{}

func (nullCodec) seal(*checksums, func() uint32, func() uint32) {}
func (nullCodec) structIntact(checksums, func() uint32) bool { return true }
func (nullCodec) contentIntact(checksums, func() uint32) bool { return true }

func codecFor(level protection.Level) integrityCodec {
	if level.Has(protection.Hashing) {
		return rollingCodec{}
	}
	return nullCodec{}
}

// StructChecksum hashes the bookkeeping fields in declaration order,
// skipping the stored checksums. Sentinels take part only when boundary
// protection is on. Element values never contribute.
func (s *Stack[T]) StructChecksum() uint32 {
	if s == nil {
		return checksum.Invalid
	}
	guarded := s.boundary().enabled()

	b := make([]byte, 0, 40)
	if guarded {
		b = binary.LittleEndian.AppendUint32(b, s.head)
	}
	b = binary.LittleEndian.AppendUint64(b, uint64(int64(s.size)))
	b = binary.LittleEndian.AppendUint64(b, uint64(int64(s.capacity)))
	b = append(b, byte(s.state))
	b = binary.LittleEndian.AppendUint64(b, uint64(s.dataAddress()))
	if guarded {
		b = binary.LittleEndian.AppendUint32(b, s.tail)
	}
	return checksum.Sum(b)
}

// ContentChecksum hashes the raw bytes of every slot up to capacity, live or
// not. It returns checksum.Invalid when there is no buffer to hash.
func (s *Stack[T]) ContentChecksum() uint32 {
	if s == nil || s.buf == nil || s.capacity <= 0 {
		return checksum.Invalid
	}
	n := min(s.capacity, len(s.buf.data))
	return checksum.Sum(rawBytes(s.buf.data[:n]))
}

func (s *Stack[T]) reseal() {
	s.integrity().seal(&s.sums, s.StructChecksum, s.ContentChecksum)
}
