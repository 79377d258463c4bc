// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 TEST SUITE: EVICTION SET
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Test Coverage:
//   - Unit tests: node count, alignment, chain closure, coverage
//   - Statistical tests: Fisher–Yates position uniformity
//   - Failure paths: invalid geometry, allocation failure mid-build, teardown
//   - Benchmarks: traversal of LLC-sized chains
// ════════════════════════════════════════════════════════════════════════════════════════════════

package evictset

import (
	"errors"
	"math/rand/v2"
	"testing"

	"memorygram/faults"
	"memorygram/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// HELPERS
// ============================================================================

// countingAllocator wraps the heap allocator, failing the failAt-th call
// (0-based) when failAt >= 0, and tracks outstanding nodes.
type countingAllocator struct {
	failAt int
	allocs int
	frees  int
}

func (c *countingAllocator) Alloc(size, align int) ([]byte, error) {
	if c.failAt >= 0 && c.allocs == c.failAt {
		return nil, faults.ErrAllocationFailure
	}
	c.allocs++
	return HeapAllocator{}.Alloc(size, align)
}

func (c *countingAllocator) Free([]byte) { c.frees++ }

func (c *countingAllocator) live() int { return c.allocs - c.frees }

// misalignedAllocator returns memory shifted one byte off the line.
type misalignedAllocator struct{ countingAllocator }

func (m *misalignedAllocator) Alloc(size, align int) ([]byte, error) {
	m.allocs++
	b := alignedBytes(size+align, align)
	return b[1 : size+1], nil
}

func walkByIndex(s *Set) []int {
	visited := make([]int, 0, s.Len())
	i := s.Head()
	for step := 0; step < s.Len(); step++ {
		visited = append(visited, i)
		i = s.Next(i)
	}
	return visited
}

// ============================================================================
// UNIT TESTS - CONSTRUCTION
// ============================================================================

func TestBuild_NodeCountAndAlignment(t *testing.T) {
	geos := []geometry.Geometry{
		{LLCSize: 64, LineSize: 64},
		{LLCSize: 1024, LineSize: 64},
		{LLCSize: 4096, LineSize: 128},
		{LLCSize: 1000 * 64, LineSize: 64},
		{LLCSize: 256 << 10, LineSize: 64},
	}
	for _, g := range geos {
		for _, alloc := range []Allocator{nil, HeapAllocator{}} {
			s, err := Build(g, Options{Seed: 42, Allocator: alloc})
			require.NoError(t, err)

			require.Equal(t, int(g.LLCSize/g.LineSize), s.Len())
			for i := 0; i < s.Len(); i++ {
				require.Zero(t, s.Addr(i)%uintptr(g.LineSize), "node %d misaligned", i)
			}
			require.NoError(t, s.Verify())
			s.Release()
		}
	}
}

func TestBuild_ConcreteSixteenNodes(t *testing.T) {
	s, err := Build(geometry.Geometry{LLCSize: 1024, LineSize: 64}, Options{Seed: 7})
	require.NoError(t, err)
	defer s.Release()

	require.Equal(t, 16, s.Len())

	visited := walkByIndex(s)
	seen := make(map[int]bool, 16)
	for _, i := range visited {
		assert.False(t, seen[i], "node %d visited twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 16)

	// Sixteen steps land back on the head.
	i := s.Head()
	for step := 0; step < 16; step++ {
		i = s.Next(i)
	}
	assert.Equal(t, s.Head(), i)
	assert.Equal(t, s.Addr(s.Head()), s.Traverse())
}

func TestBuild_NodesDoNotShareLines(t *testing.T) {
	s, err := Build(geometry.Geometry{LLCSize: 64 << 10, LineSize: 64}, Options{Seed: 3})
	require.NoError(t, err)
	defer s.Release()

	lines := make(map[uintptr]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		line := s.Addr(i) / 64
		require.False(t, lines[line], "two nodes on line %#x", line)
		lines[line] = true
	}
}

func TestBuild_CoverageAcrossSeeds(t *testing.T) {
	g := geometry.Geometry{LLCSize: 97 * 64, LineSize: 64}
	for seed := uint64(1); seed <= 200; seed++ {
		s, err := Build(g, Options{Seed: seed, Allocator: HeapAllocator{}})
		require.NoError(t, err)
		require.NoError(t, s.Verify(), "seed %d", seed)

		visited := walkByIndex(s)
		require.Equal(t, s.Order(), toUint32(visited))
		s.Release()
	}
}

func TestBuild_SeedIsReproducible(t *testing.T) {
	g := geometry.Geometry{LLCSize: 4096, LineSize: 64}
	a, err := Build(g, Options{Seed: 99, Allocator: HeapAllocator{}})
	require.NoError(t, err)
	b, err := Build(g, Options{Seed: 99, Allocator: HeapAllocator{}})
	require.NoError(t, err)
	c, err := Build(g, Options{Seed: 100, Allocator: HeapAllocator{}})
	require.NoError(t, err)

	assert.Equal(t, a.Order(), b.Order())
	assert.NotEqual(t, a.Order(), c.Order())
	assert.Equal(t, uint64(99), a.Seed())
}

func TestBuild_DefaultSeedIsRecorded(t *testing.T) {
	s, err := Build(geometry.Geometry{LLCSize: 1024, LineSize: 64}, Options{Allocator: HeapAllocator{}})
	require.NoError(t, err)
	assert.NotZero(t, s.Seed())
}

func TestBuild_HugePagesFallBack(t *testing.T) {
	s, err := Build(geometry.Geometry{LLCSize: 1 << 20, LineSize: 64}, Options{Seed: 1, HugePages: true})
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, s.Verify())
	t.Logf("huge pages in use: %v", s.HugePages())
}

// ============================================================================
// STATISTICAL TESTS - SHUFFLE
// ============================================================================

func TestShuffle_PositionUniformity(t *testing.T) {
	const n = 8
	const trials = 40000
	counts := [n][n]int{}

	rng := rand.New(rand.NewPCG(2024, 7))
	perm := make([]uint32, n)
	for trial := 0; trial < trials; trial++ {
		for i := range perm {
			perm[i] = uint32(i)
		}
		Shuffle(perm, rng)
		for pos, node := range perm {
			counts[node][pos]++
		}
	}

	expected := trials / n
	tolerance := expected / 10
	for node := 0; node < n; node++ {
		for pos := 0; pos < n; pos++ {
			got := counts[node][pos]
			assert.InDelta(t, expected, got, float64(tolerance),
				"node %d at position %d: %d times, expected ~%d", node, pos, got, expected)
		}
	}
}

func TestShuffle_SingleAndEmpty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	Shuffle(nil, rng)
	one := []uint32{0}
	Shuffle(one, rng)
	assert.Equal(t, []uint32{0}, one)
}

// ============================================================================
// FAILURE PATHS
// ============================================================================

func TestBuild_ZeroLLCIsInvalid(t *testing.T) {
	alloc := &countingAllocator{failAt: -1}
	s, err := Build(geometry.Geometry{LLCSize: 0, LineSize: 64}, Options{Allocator: alloc})
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, faults.ErrInvalidGeometry))
	assert.Zero(t, alloc.allocs, "nothing may be allocated")
}

func TestBuild_InvalidGeometries(t *testing.T) {
	for _, g := range []geometry.Geometry{
		{LLCSize: 1024, LineSize: 0},
		{LLCSize: 32, LineSize: 64},
		{LLCSize: 1024, LineSize: 48},
		{LLCSize: 1000, LineSize: 64},
	} {
		alloc := &countingAllocator{failAt: -1}
		_, err := Build(g, Options{Allocator: alloc})
		assert.True(t, errors.Is(err, faults.ErrInvalidGeometry), "%+v", g)
		assert.Zero(t, alloc.allocs)
	}
}

func TestBuild_AllocationFailureReleasesPartialNodes(t *testing.T) {
	alloc := &countingAllocator{failAt: 7}
	s, err := Build(geometry.Geometry{LLCSize: 20 * 64, LineSize: 64}, Options{Seed: 1, Allocator: alloc})

	assert.Nil(t, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrAllocationFailure))
	assert.Equal(t, 7, alloc.allocs, "nodes #0-6 allocated")
	assert.Equal(t, 7, alloc.frees, "nodes #0-6 released")
	assert.Zero(t, alloc.live())
}

func TestBuild_MisalignedNodeIsAllocationFailure(t *testing.T) {
	alloc := &misalignedAllocator{}
	_, err := Build(geometry.Geometry{LLCSize: 4 * 64, LineSize: 64}, Options{Seed: 1, Allocator: alloc})
	assert.True(t, errors.Is(err, faults.ErrAllocationFailure))
	assert.Zero(t, alloc.live())
}

// ============================================================================
// TEARDOWN
// ============================================================================

func TestRelease_FreesEveryNodeOnce(t *testing.T) {
	alloc := &countingAllocator{failAt: -1}
	s, err := Build(geometry.Geometry{LLCSize: 32 * 64, LineSize: 64}, Options{Seed: 5, Allocator: alloc})
	require.NoError(t, err)

	s.Release()
	assert.Equal(t, 32, alloc.frees)
	assert.Zero(t, s.Len())
	assert.Equal(t, -1, s.Head())

	s.Release()
	assert.Equal(t, 32, alloc.frees, "second release is a no-op")

	var nilSet *Set
	nilSet.Release()
}

func TestArena_ExhaustionAndUnmap(t *testing.T) {
	a, err := NewArena(2, 64, false)
	require.NoError(t, err)

	b0, err := a.Alloc(64, 64)
	require.NoError(t, err)
	b1, err := a.Alloc(64, 64)
	require.NoError(t, err)
	_, err = a.Alloc(64, 64)
	assert.True(t, errors.Is(err, faults.ErrAllocationFailure))

	a.Free(b0)
	a.Free(b1)
	_, err = a.Alloc(64, 64)
	assert.True(t, errors.Is(err, faults.ErrAllocationFailure), "arena is gone after the last free")
	assert.NoError(t, a.Close())
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkTraverse_8MiB(b *testing.B) {
	s, err := Build(geometry.Geometry{LLCSize: 8 << 20, LineSize: 64}, Options{Seed: 1})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Release()

	var sink uintptr
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink ^= s.Traverse()
	}
	_ = sink
}

func toUint32(in []int) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}
