// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 TEST SUITE: TIMING STORE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Test Coverage:
//   - Growth: order preserved across doublings, capacity sequence
//   - Limits: cap reached mid-append, partial contents survive
//   - Lifecycle: Reset keeps capacity, Release empties
// ════════════════════════════════════════════════════════════════════════════════════════════════

package timing

import (
	"errors"
	"testing"

	"memorygram/faults"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GrowthPreservesOrder(t *testing.T) {
	const initial = 8
	s := New(initial, 0)

	for i := 0; i < 2*initial+1; i++ {
		require.NoError(t, s.Append(uint64(i*10)))
	}

	require.Equal(t, 2*initial+1, s.Len())
	assert.Equal(t, 4*initial, s.Cap())
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, uint64(i*10), s.At(i))
	}
}

func TestStore_CapacityDoubles(t *testing.T) {
	s := New(1, 0)
	caps := []int{}
	last := -1
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Append(1))
		if s.Cap() != last {
			last = s.Cap()
			caps = append(caps, last)
		}
	}
	assert.Equal(t, []int{1, 2, 4, 8, 16, 32}, caps)
}

func TestStore_CapReturnsAllocationFailure(t *testing.T) {
	s := New(2, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(uint64(i)))
	}
	assert.Equal(t, 5, s.Cap(), "last growth clamps to the cap")

	err := s.Append(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrAllocationFailure))
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, s.Samples())
}

func TestStore_InitialCapacityClamped(t *testing.T) {
	assert.Equal(t, 1, New(0, 0).Cap())
	assert.Equal(t, 4, New(16, 4).Cap())
}

func TestStore_AllIteratesInOrder(t *testing.T) {
	s := New(2, 0)
	for _, v := range []uint64{5, 6, 7} {
		require.NoError(t, s.Append(v))
	}
	var got []uint64
	for i, v := range s.All() {
		assert.Equal(t, len(got), i)
		got = append(got, v)
	}
	assert.Equal(t, []uint64{5, 6, 7}, got)

	// Early break stops the iteration.
	count := 0
	for range s.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestStore_ResetKeepsCapacity(t *testing.T) {
	s := New(4, 0)
	for i := 0; i < 9; i++ {
		require.NoError(t, s.Append(uint64(i)))
	}
	c := s.Cap()
	s.Reset()
	assert.Zero(t, s.Len())
	assert.Equal(t, c, s.Cap())
	assert.Empty(t, s.Samples())
}

func TestStore_Release(t *testing.T) {
	s := New(4, 0)
	require.NoError(t, s.Append(1))
	s.Release()
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Cap())

	require.NoError(t, s.Append(2), "released store grows again")
	assert.Equal(t, []uint64{2}, s.Samples())

	var nilStore *Store
	nilStore.Release()
}

func TestStore_AtOutOfRangePanics(t *testing.T) {
	s := New(4, 0)
	assert.Panics(t, func() { s.At(0) })
}

func BenchmarkStore_Append(b *testing.B) {
	s := New(1024, 0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if s.Len() == 1<<20 {
			s.Reset()
		}
		_ = s.Append(uint64(i))
	}
}
