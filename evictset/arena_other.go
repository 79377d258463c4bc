//go:build !linux

package evictset

import (
	"fmt"

	"memorygram/faults"
)

// Arena is the portable stand-in: one aligned heap block carved into lines.
type Arena struct {
	mem  []byte
	line int
	off  int
	live int
}

// NewArena allocates room for lines nodes of line bytes. Huge pages are not
// available here and the flag is ignored.
func NewArena(lines, line int, huge bool) (*Arena, error) {
	if lines <= 0 || line <= 0 {
		return nil, fmt.Errorf("%w: empty arena", faults.ErrAllocationFailure)
	}
	return &Arena{mem: alignedBytes(lines*line, line), line: line}, nil
}

// Huge always reports false.
func (a *Arena) Huge() bool { return false }

// Alloc returns the next line of the block.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if a.mem == nil || size != a.line || a.off+size > len(a.mem) {
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

// Free releases one node; the block is dropped with the last one.
func (a *Arena) Free([]byte) {
	if a.live == 0 {
		return
	}
	a.live--
	if a.live == 0 {
		a.mem = nil
	}
}

// Close drops the block.
func (a *Arena) Close() error {
	a.mem = nil
	a.live = 0
	return nil
}
