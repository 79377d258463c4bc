// ════════════════════════════════════════════════════════════════════════════════════════════════
// Eviction Set
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: LLC-Spanning Pointer Chain
//
// Description:
//   One node per cache line of the LLC, each node exactly one line long and line-aligned, linked
//   into a single circular chain in a random order. Walking the chain once touches every line of
//   a cache-sized footprint, evicting whatever else was resident.
//
// Layout:
//   - Node memory: word 0 holds the address of the next node, the rest is padding
//   - next[]:      the same links by index, for coverage checks and reports
//   - order[]:     the shuffled permutation, order[0] is the head
//
// Prefetch defence:
//   The order is a Fisher–Yates permutation, so consecutive steps have no fixed stride, and
//   every step is a load whose address comes from the previous load.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package evictset

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"
	"unsafe"

	"memorygram/faults"
	"memorygram/geometry"
	"memorygram/utils"
)

// Options tune how a Set is built.
type Options struct {
	Seed      uint64    // Shuffle seed; 0 derives one from the wall clock
	Allocator Allocator // Node source; nil maps a fresh Arena
	HugePages bool      // Back the default Arena with huge pages when possible
}

// Set is a circular chain of cache-line nodes covering the LLC.
//
// ⚠️ Not safe for concurrent use. Traverse is read-only and may run while
// nothing else touches the set.
type Set struct {
	line  int
	nodes [][]byte // node memory by index
	next  []uint32 // next[i] is the index following node i
	order []uint32 // shuffled visiting order; order[0] is the head
	head  uintptr  // address of node order[0]
	seed  uint64
	alloc Allocator
	owned bool // alloc was created by Build
	huge  bool
}

// Build allocates and links an eviction set for g.
//
// Fails with faults.ErrInvalidGeometry before allocating anything, or with
// faults.ErrAllocationFailure after releasing every node already allocated.
func Build(g geometry.Geometry, opts Options) (*Set, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	lines := g.Lines()
	if lines > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d lines exceed the index width", faults.ErrInvalidGeometry, lines)
	}
	n, line := int(lines), int(g.LineSize)

	s := &Set{line: line, seed: opts.Seed, alloc: opts.Allocator}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}
	if s.alloc == nil {
		arena, err := NewArena(n, line, opts.HugePages)
		if err != nil {
			return nil, err
		}
		s.alloc, s.owned, s.huge = arena, true, arena.Huge()
	}

	// ───── 1. One independent allocation per line ─────
	s.nodes = make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := s.alloc.Alloc(line, line)
		if err == nil && !aligned(b, line, line) {
			s.alloc.Free(b)
			err = fmt.Errorf("%w: node %d not aligned to %d", faults.ErrAllocationFailure, i, line)
		}
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("node %d of %d: %w", i, n, err)
		}
		s.nodes = append(s.nodes, b)
	}

	// ───── 2. Random visiting order ─────
	s.order = make([]uint32, n)
	for i := range s.order {
		s.order[i] = uint32(i)
	}
	Shuffle(s.order, rand.New(rand.NewPCG(s.seed, utils.Mix64(s.seed))))

	// ───── 3. Close the chain ─────
	s.next = make([]uint32, n)
	for i := 0; i < n; i++ {
		from, to := s.order[i], s.order[(i+1)%n]
		s.next[from] = to
		*(*uintptr)(unsafe.Pointer(&s.nodes[from][0])) = addrOf(s.nodes[to])
	}
	s.head = addrOf(s.nodes[s.order[0]])
	return s, nil
}

// Shuffle permutes perm in place with Fisher–Yates: for i from len-1 down to
// 1, swap perm[i] with perm[j] for j uniform in [0, i].
func Shuffle(perm []uint32, rng *rand.Rand) {
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TRAVERSAL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Traverse follows the chain exactly Len() steps from the head and returns
// the address it ends on, which is the head again. Each step is a dependent
// load from a different cache line.
//
//go:norace
//go:nocheckptr
//go:nosplit
func (s *Set) Traverse() uintptr {
	p := s.head
	for i := len(s.next); i > 0; i-- {
		p = *(*uintptr)(unsafe.Pointer(p))
	}
	return p
}

// Verify walks the in-memory chain and checks that it visits every node
// exactly once, agrees with the index links and returns to the head.
func (s *Set) Verify() error {
	n := len(s.nodes)
	if n == 0 {
		return fmt.Errorf("evictset: empty set")
	}
	index := make(map[uintptr]uint32, n)
	for i, b := range s.nodes {
		index[addrOf(b)] = uint32(i)
	}

	seen := make([]bool, n)
	p := s.head
	for step := 0; step < n; step++ {
		i, ok := index[p]
		if !ok {
			return fmt.Errorf("evictset: step %d left the set at %#x", step, p)
		}
		if seen[i] {
			return fmt.Errorf("evictset: node %d visited twice by step %d", i, step)
		}
		seen[i] = true
		p = *(*uintptr)(unsafe.Pointer(&s.nodes[i][0]))
		if index[p] != s.next[i] {
			return fmt.Errorf("evictset: node %d links to %d in memory but %d by index", i, index[p], s.next[i])
		}
	}
	if p != s.head {
		return fmt.Errorf("evictset: chain does not return to head after %d steps", n)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Len returns the number of nodes.
func (s *Set) Len() int { return len(s.next) }

// LineSize returns the node size in bytes.
func (s *Set) LineSize() int { return s.line }

// Head returns the index of the first node visited.
func (s *Set) Head() int {
	if len(s.order) == 0 {
		return -1
	}
	return int(s.order[0])
}

// Next returns the index of the node after node i.
func (s *Set) Next(i int) int { return int(s.next[i]) }

// Order returns a copy of the visiting order.
func (s *Set) Order() []uint32 {
	out := make([]uint32, len(s.order))
	copy(out, s.order)
	return out
}

// Addr returns the address of node i.
func (s *Set) Addr(i int) uintptr { return addrOf(s.nodes[i]) }

// Seed returns the seed the order was drawn with.
func (s *Set) Seed() uint64 { return s.seed }

// HugePages reports whether the nodes sit on huge pages.
func (s *Set) HugePages() bool { return s.huge }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TEARDOWN
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Release frees every node individually, then the index structures, and
// closes the arena if Build created it. Safe to call more than once.
func (s *Set) Release() {
	if s == nil {
		return
	}
	for i, b := range s.nodes {
		if b != nil {
			s.alloc.Free(b)
			s.nodes[i] = nil
		}
	}
	s.nodes = nil
	s.next = nil
	s.order = nil
	s.head = 0
	if c, ok := s.alloc.(io.Closer); ok && s.owned {
		_ = c.Close()
	}
}
