package cycles

import (
	"errors"
	"testing"

	"memorygram/faults"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// VIRTUAL COUNTER
// ============================================================================

func TestVirtual_TickAdvancesAfterRead(t *testing.T) {
	v := NewVirtual(100, 3)
	assert.Equal(t, uint64(100), v.Now())
	assert.Equal(t, uint64(103), v.Now())
	assert.Equal(t, uint64(106), v.Peek())
}

func TestVirtual_SpinUntilJumpsExactly(t *testing.T) {
	v := NewVirtual(0, 0)
	v.SpinUntil(1000)
	assert.Equal(t, uint64(1000), v.Now())

	// A target in the past must not move time backwards.
	v.SpinUntil(10)
	assert.Equal(t, uint64(1000), v.Now())
}

func TestVirtual_Advance(t *testing.T) {
	v := NewVirtual(0, 0)
	v.Advance(250)
	v.Advance(250)
	assert.Equal(t, uint64(500), v.Peek())
}

// ============================================================================
// SHARED SPIN
// ============================================================================

func TestSpin_StopsAtTarget(t *testing.T) {
	v := NewVirtual(0, 7)
	spin(v.Now, 100)
	// The last read returned the first value >= 100; one more tick has
	// been added since.
	assert.Equal(t, uint64(112), v.Peek())
}

func TestSpin_PastTargetReadsOnce(t *testing.T) {
	v := NewVirtual(500, 1)
	spin(v.Now, 100)
	assert.Equal(t, uint64(501), v.Peek())
}

// ============================================================================
// HARDWARE COUNTER
// ============================================================================

func TestHardware_MonotonicOrUnsupported(t *testing.T) {
	c, err := Hardware()
	if err != nil {
		require.True(t, errors.Is(err, faults.ErrUnsupportedPlatform))
		t.Skip("no serializing counter on this platform")
	}

	prev := c.Now()
	for i := 0; i < 10000; i++ {
		now := c.Now()
		require.GreaterOrEqual(t, now, prev)
		prev = now
	}
}

func TestHardware_SpinUntilReachesTarget(t *testing.T) {
	c, err := Hardware()
	if err != nil {
		t.Skip("no serializing counter on this platform")
	}
	target := c.Now() + 10000
	c.SpinUntil(target)
	assert.GreaterOrEqual(t, c.Now(), target)
	assert.NotEmpty(t, Name())
}

func BenchmarkHardware_Now(b *testing.B) {
	c, err := Hardware()
	if err != nil {
		b.Skip("no serializing counter on this platform")
	}
	var sink uint64
	for i := 0; i < b.N; i++ {
		sink += c.Now()
	}
	_ = sink
}

func TestRate_FallsBackToNominal(t *testing.T) {
	r := Rate(3_000_000_000)
	if Frequency() == 0 {
		assert.Equal(t, uint64(3_000_000_000), r)
	} else {
		assert.Equal(t, Frequency(), r)
	}
}
