package stack

import "unsafe"

// Element is the set of fixed-width value types a Stack can hold. None of
// them contain pointers, so their raw bytes can be poisoned and hashed.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64
}

func widthOf[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// rawBytes views data as its underlying bytes. Writes through the view
// change the elements.
func rawBytes[T Element](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*widthOf[T]())
}

func addressOf[T Element](data []T) uintptr {
	if data == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(data)))
}
