//go:build unix

// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 TEST SUITE: EXPERIMENT CONTROL FLAGS
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Control System Test Suite
//
// Test Coverage:
//   - Unit tests: stop and probing flags, reset
//   - Integration tests: signal routing into the stop flag
//   - Edge cases: concurrent flag access
// ════════════════════════════════════════════════════════════════════════════════════════════════

package control

import (
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// UNIT TESTS - FLAGS
// ============================================================================

func TestControl_InitialState(t *testing.T) {
	Reset()
	assert.False(t, Stopping())
	assert.False(t, Probing())
}

func TestControl_Shutdown(t *testing.T) {
	Reset()
	Shutdown()
	assert.True(t, Stopping())

	Shutdown()
	assert.True(t, Stopping(), "Shutdown must be idempotent")

	Reset()
	assert.False(t, Stopping())
}

func TestControl_MarkProbing(t *testing.T) {
	Reset()
	MarkProbing(true)
	assert.True(t, Probing())
	MarkProbing(false)
	assert.False(t, Probing())
}

func TestControl_HandleSignalDuringProbe(t *testing.T) {
	Reset()
	MarkProbing(true)
	handleSignal(syscall.SIGINT)
	assert.True(t, Stopping())
	assert.True(t, Probing(), "signal must not close the probe window")
	Reset()
}

// ============================================================================
// INTEGRATION TESTS - SIGNALS
// ============================================================================

func TestControl_SignalSetsStop(t *testing.T) {
	Reset()
	restore := InstallSignalHandler()
	defer restore()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	require.Eventually(t, Stopping, 2*time.Second, 5*time.Millisecond)
	Reset()
}

// ============================================================================
// EDGE CASES - CONCURRENCY
// ============================================================================

func TestControl_ConcurrentAccess(t *testing.T) {
	Reset()
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				MarkProbing(i%2 == 0)
				_ = Probing()
				if g == 0 && i == 500 {
					Shutdown()
				}
				_ = Stopping()
			}
		}(g)
	}
	wg.Wait()
	assert.True(t, Stopping())
	Reset()
}
