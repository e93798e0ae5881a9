// Package checksum implements the rolling multiplicative hash used to detect
// unexpected mutation of stack bookkeeping and contents.
package checksum

import (
	"encoding/binary"
	"hash"
)

const (
	Multiplier = 1001
	Modulus    = 1_000_000_123

	// Invalid is reported in place of a content checksum when there is no
	// buffer to hash.
	Invalid uint32 = 0x15FA11ED
)

// Rolling accumulates h = (h*Multiplier + b) mod Modulus over every byte
// written. The zero value is ready to use.
type Rolling struct {
	sum uint64
}

var _ hash.Hash32 = (*Rolling)(nil)

func New() *Rolling {
	return &Rolling{}
}

func (r *Rolling) Write(p []byte) (int, error) {
	sum := r.sum
	for _, b := range p {
		sum = (sum*Multiplier%Modulus + uint64(b)) % Modulus
	}
	r.sum = sum
	return len(p), nil
}

func (r *Rolling) Sum32() uint32 {
	return uint32(r.sum)
}

func (r *Rolling) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, r.Sum32())
}

func (r *Rolling) Reset() {
	r.sum = 0
}

func (r *Rolling) Size() int {
	return 4
}

func (r *Rolling) BlockSize() int {
	return 1
}

// Sum returns the rolling checksum of p.
func Sum(p []byte) uint32 {
	var r Rolling
	r.Write(p)
	return r.Sum32()
}
