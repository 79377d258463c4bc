// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cycle Counter
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Hardware Timestamp Capability
//
// Description:
//   The sampling loop never reads a clock directly; it receives a Counter. Production builds
//   hand it the serializing hardware counter of the CPU, tests hand it a Virtual counter whose
//   time only moves when told to.
//
// Platform Matrix:
//   - amd64: RDTSCP followed by CPUID (counter_amd64.go), requires the RDTSCP feature
//   - arm64: ISB + CNTVCT_EL0 (counter_arm64.go / counter_arm64.s)
//   - others: ErrUnsupportedPlatform (counter_other.go)
// ════════════════════════════════════════════════════════════════════════════════════════════════

package cycles

// Counter is a monotonic per-core cycle source.
type Counter interface {
	// Now returns the current counter value. Reads must not be reordered
	// with the surrounding memory operations.
	Now() uint64

	// SpinUntil busy-waits until Now() >= target. It returns immediately
	// when target has already passed and never sleeps or yields the thread.
	SpinUntil(target uint64)
}

// spin is the shared busy-wait used by the hardware counters.
//
//go:nosplit
func spin(now func() uint64, target uint64) {
	for now() < target {
		cpuRelax()
	}
}

// Rate returns the counter rate in Hz: the counter's own frequency where
// the hardware reports one, otherwise nominalHz.
func Rate(nominalHz uint64) uint64 {
	if f := Frequency(); f != 0 {
		return f
	}
	return nominalHz
}
