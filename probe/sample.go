// ════════════════════════════════════════════════════════════════════════════════════════════════
// Sampling Loop
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Fixed-Rate Traversal Timer
//
// Description:
//   Walks the eviction set once per interval and records how many cycles each walk took. The
//   loop is a pure function of its counter, walker, interval and duration, so it runs
//   unchanged against the hardware counter and against a virtual one.
//
// Timeline of one iteration:
//   intervalStart ── traverseStart ── [walk N lines] ── traverseEnd ── spin ── intervalStart+interval
//
// Overrun policy:
//   A walk that ends past its interval target skips the wait. The next interval starts from
//   wherever the clock is; lost time is never made up. Such intervals are counted.
//
// ⚠️ Hot path: no allocation except store growth, no logging, no syscalls
// ════════════════════════════════════════════════════════════════════════════════════════════════

package probe

import (
	"math"

	"memorygram/cycles"
	"memorygram/timing"
)

// Walker performs one full traversal and returns the address it ended on.
type Walker interface {
	Traverse() uintptr
}

// sink receives every traversal result so the loads stay observable.
var sink uintptr

// Sample runs the probe for duration cycles, taking one sample every
// interval cycles, and appends each traversal time to store.
//
// It returns the number of intervals whose walk ran past the interval
// target. If the store cannot grow the loop stops with the store's error;
// samples already appended remain in place.
//
//go:norace
func Sample(c cycles.Counter, w Walker, interval, duration uint64, store *timing.Store) (overruns int, err error) {
	deadline := saturatingAdd(c.Now(), duration)

	for c.Now() < deadline {
		intervalStart := c.Now()
		target := saturatingAdd(intervalStart, interval)

		traverseStart := c.Now()
		sink = w.Traverse()
		traverseEnd := c.Now()

		if err = store.Append(traverseEnd - traverseStart); err != nil {
			return overruns, err
		}

		if traverseEnd > target {
			overruns++
			continue
		}
		c.SpinUntil(target)
	}
	return overruns, nil
}

// saturatingAdd returns a+b, clamped to the largest counter value.
//
//go:nosplit
//go:inline
func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
