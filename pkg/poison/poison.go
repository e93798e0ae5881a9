// Package poison fills storage that has not been written yet with
// recognizable invalid bit patterns, so reads of uninitialized slots stand
// out from real data.
package poison

import "encoding/binary"

const (
	Byte  uint8  = 0xff
	Word  uint16 = 0xdead
	DWord uint32 = 0xdeadbeef
)

// Pattern returns the poison bytes for one element of the given width.
func Pattern(width int) []byte {
	if width <= 0 {
		return nil
	}
	p := make([]byte, width)
	Fill(p, width)
	return p
}

// Fill overwrites b with the poison pattern for elements of the given width,
// in native byte order. Widths of four or more repeat the 32-bit pattern; a
// remainder shorter than the pattern gets Byte.
func Fill(b []byte, width int) {
	switch {
	case width <= 1:
		fillBytes(b)
	case width < 4:
		n := len(b) &^ 1
		for i := 0; i < n; i += 2 {
			binary.NativeEndian.PutUint16(b[i:], Word)
		}
		fillBytes(b[n:])
	default:
		n := len(b) &^ 3
		for i := 0; i < n; i += 4 {
			binary.NativeEndian.PutUint32(b[i:], DWord)
		}
		fillBytes(b[n:])
	}
}

func fillBytes(b []byte) {
	for i := range b {
		b[i] = Byte
	}
}
