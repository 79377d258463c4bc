// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: faults.go - Error kinds shared by the probe core
//
// Purpose:
//   - Single home for the three fatal error kinds so every package wraps the
//     same sentinel and callers can branch with errors.Is.
//
// Notes:
//   - Packages add context with fmt.Errorf("...: %w", faults.ErrX).
//   - None of these are retried inside the core.
// ─────────────────────────────────────────────────────────────────────────────

package faults

import "errors"

var (
	// ErrInvalidGeometry indicates the geometry yields zero cache lines or
	// carries a zero/non-power-of-two line size. Nothing has been allocated.
	ErrInvalidGeometry = errors.New("invalid cache geometry")

	// ErrAllocationFailure indicates a node, index or sample buffer could not
	// be allocated. Partially built state has already been released.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrUnsupportedPlatform indicates no serializing cycle counter exists on
	// this CPU architecture.
	ErrUnsupportedPlatform = errors.New("unsupported platform: no serializing cycle counter")
)
