// ════════════════════════════════════════════════════════════════════════════════════════════════
// Timing Store
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Growable Sample Buffer
//
// Description:
//   Ordered sequence of traversal latencies in cycles. Insertion order is measurement order and
//   nothing is removed while a probe runs. Capacity doubles when full, so appends are amortized
//   O(1) and a reallocation only ever happens on the append that found the buffer full.
//
// Limits:
//   - Growth stops at maxSamples; the append that would exceed it fails with
//     faults.ErrAllocationFailure and leaves every earlier sample in place
// ════════════════════════════════════════════════════════════════════════════════════════════════

package timing

import (
	"fmt"
	"iter"

	"memorygram/faults"
)

// Store holds cycle-count samples. Single writer; not safe for concurrent use.
type Store struct {
	buf []uint64
	n   int
	max int
}

// New returns a store with room for initialCapacity samples that will grow
// up to maxSamples. A non-positive maxSamples means no cap beyond the
// platform's own limits.
func New(initialCapacity, maxSamples int) *Store {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if maxSamples <= 0 {
		maxSamples = int(^uint(0) >> 1)
	}
	if initialCapacity > maxSamples {
		initialCapacity = maxSamples
	}
	return &Store{buf: make([]uint64, initialCapacity), max: maxSamples}
}

// Append records one sample at the end of the store.
//
//go:nosplit
func (s *Store) Append(v uint64) error {
	if s.n == len(s.buf) {
		if err := s.grow(); err != nil {
			return err
		}
	}
	s.buf[s.n] = v
	s.n++
	return nil
}

// grow doubles the buffer, clamped to the cap.
func (s *Store) grow() error {
	if len(s.buf) >= s.max {
		return fmt.Errorf("%w: timing store full at %d samples", faults.ErrAllocationFailure, s.n)
	}
	next := len(s.buf) * 2
	if next == 0 {
		next = 1
	}
	if next > s.max || next < len(s.buf) {
		next = s.max
	}
	buf := make([]uint64, next)
	copy(buf, s.buf[:s.n])
	s.buf = buf
	return nil
}

// Len returns the number of samples recorded.
func (s *Store) Len() int { return s.n }

// Cap returns the current capacity.
func (s *Store) Cap() int { return len(s.buf) }

// At returns sample i.
func (s *Store) At(i int) uint64 {
	if i < 0 || i >= s.n {
		panic("timing: sample index out of range")
	}
	return s.buf[i]
}

// Samples returns the recorded samples. The slice aliases the store and is
// only valid until the next Append, Reset or Release.
func (s *Store) Samples() []uint64 { return s.buf[:s.n:s.n] }

// All yields (index, sample) pairs in insertion order.
func (s *Store) All() iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(i, s.buf[i]) {
				return
			}
		}
	}
}

// Reset forgets every sample and keeps the capacity for the next round.
func (s *Store) Reset() { s.n = 0 }

// Release drops the buffer. The store is empty afterwards and Append will
// allocate again from a capacity of one.
func (s *Store) Release() {
	if s == nil {
		return
	}
	s.buf = nil
	s.n = 0
}
