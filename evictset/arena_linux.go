//go:build linux

package evictset

import (
	"fmt"

	"memorygram/faults"

	"golang.org/x/sys/unix"
)

// hugePageSize is the MAP_HUGETLB granule the arena rounds up to.
const hugePageSize = 2 << 20

// Arena is a single anonymous mapping carved into cache-line nodes. Nodes
// live outside the Go heap, so the collector never scans or touches them
// while the probe runs. The mapping is released when the last node is freed.
type Arena struct {
	mem  []byte
	line int
	off  int
	live int
	huge bool
}

// NewArena maps room for lines nodes of line bytes. With huge set it first
// tries MAP_HUGETLB and falls back to normal pages.
func NewArena(lines, line int, huge bool) (*Arena, error) {
	if lines <= 0 || line <= 0 {
		return nil, fmt.Errorf("%w: empty arena", faults.ErrAllocationFailure)
	}
	size := lines * line
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_PRIVATE | unix.MAP_ANONYMOUS | unix.MAP_POPULATE

	if huge {
		hsize := (size + hugePageSize - 1) &^ (hugePageSize - 1)
		if mem, err := unix.Mmap(-1, 0, hsize, prot, flags|unix.MAP_HUGETLB); err == nil {
			return &Arena{mem: mem, line: line, huge: true}, nil
		}
	}

	mem, err := unix.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", faults.ErrAllocationFailure, size, err)
	}
	return &Arena{mem: mem, line: line}, nil
}

// Huge reports whether the arena is backed by huge pages.
func (a *Arena) Huge() bool { return a.huge }

// Alloc returns the next line of the mapping.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if a.mem == nil {
		return nil, fmt.Errorf("%w: arena released", faults.ErrAllocationFailure)
	}
	if size != a.line || a.off+size > len(a.mem) {
		return nil, fmt.Errorf("%w: arena exhausted at offset %d", faults.ErrAllocationFailure, a.off)
	}
	b := a.mem[a.off : a.off+size : a.off+size]
	if !aligned(b, size, align) {
		return nil, fmt.Errorf("%w: arena offset %d misaligned", faults.ErrAllocationFailure, a.off)
	}
	a.off += size
	a.live++
	return b, nil
}

// Free releases one node; the mapping goes away with the last one.
func (a *Arena) Free([]byte) {
	if a.live == 0 {
		return
	}
	a.live--
	if a.live == 0 {
		_ = a.Close()
	}
}

// Close unmaps the arena regardless of outstanding nodes.
func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := unix.Munmap(a.mem)
	a.mem = nil
	a.live = 0
	return err
}
