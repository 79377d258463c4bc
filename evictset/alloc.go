package evictset

import (
	"fmt"
	"unsafe"

	"memorygram/faults"
)

// Allocator hands out node memory one cache line at a time. Every node is a
// separate Alloc call and is returned with its own Free call.
type Allocator interface {
	// Alloc returns size bytes whose first byte is aligned to align.
	Alloc(size, align int) ([]byte, error)

	// Free returns memory obtained from Alloc.
	Free(b []byte)
}

// HeapAllocator carves aligned nodes out of over-sized Go heap slices.
// Used where anonymous mappings are unavailable and by tests.
type HeapAllocator struct{}

// Alloc over-allocates by align-1 bytes and slices at the first aligned
// address. The backing array stays reachable through the returned slice.
func (HeapAllocator) Alloc(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("%w: bad node shape %d/%d", faults.ErrAllocationFailure, size, align)
	}
	return alignedBytes(size, align), nil
}

// Free drops the node; the collector reclaims it.
func (HeapAllocator) Free([]byte) {}

// alignedBytes returns a size-byte slice aligned to align.
func alignedBytes(size, align int) []byte {
	buf := make([]byte, size+align-1)
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	offset := uintptr(0)
	if mod := ptr & uintptr(align-1); mod != 0 {
		offset = uintptr(align) - mod
	}
	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// addrOf returns the address of the first byte of b.
//
//go:nosplit
//go:inline
func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// aligned reports whether b starts on an align boundary and holds size bytes.
func aligned(b []byte, size, align int) bool {
	return len(b) == size && addrOf(b)&uintptr(align-1) == 0
}
