// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cache Geometry
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Hardware Topology Snapshot
//
// Description:
//   Immutable description of the last-level cache and the processor around it. The probe core
//   only reads LLCSize and LineSize; the remaining fields feed reports and the cycle budgets
//   derived from the nominal clock.
//
// Safety:
//   - Associativity and LogicalCPUs may be zero when undetectable. Every derived value that
//     divides by them returns zero instead.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package geometry

import (
	"fmt"

	"memorygram/constants"
	"memorygram/faults"
	"memorygram/utils"
)

// Geometry is a snapshot of the cache topology. Treat it as a value.
type Geometry struct {
	LLCSize        uint64 `json:"llc_size_bytes"`    // Last-level cache size in bytes
	LineSize       uint64 `json:"cache_line_size"`   // Coherency line size in bytes
	Associativity  int    `json:"llc_associativity"` // Ways; 0 when unknown
	LogicalCPUs    int    `json:"logical_cpus"`      // Online logical processors
	Hyperthreading bool   `json:"hyperthreading"`    // SMT active
	ModelName      string `json:"model_name"`
	ClockHz        uint64 `json:"clock_hz"` // Nominal clock; 0 when unknown
	HugePagesTotal int    `json:"hugepages_total"`
	HugePagesFree  int    `json:"hugepages_free"`
	HugePageSize   uint64 `json:"hugepage_size_bytes"`
}

// Lines returns the number of cache lines covering the LLC.
//
//go:nosplit
//go:inline
func (g Geometry) Lines() uint64 {
	if g.LineSize == 0 {
		return 0
	}
	return g.LLCSize / g.LineSize
}

// Validate checks the fields the eviction set depends on: a non-zero LLC,
// a power-of-two line at least one machine word wide, and an LLC holding a
// whole, non-zero number of lines.
func (g Geometry) Validate() error {
	switch {
	case g.LLCSize == 0:
		return fmt.Errorf("%w: llc size is zero", faults.ErrInvalidGeometry)
	case g.LineSize == 0:
		return fmt.Errorf("%w: line size is zero", faults.ErrInvalidGeometry)
	case g.LineSize&(g.LineSize-1) != 0:
		return fmt.Errorf("%w: line size %d is not a power of two", faults.ErrInvalidGeometry, g.LineSize)
	case g.LineSize < 8:
		return fmt.Errorf("%w: line size %d cannot hold a link", faults.ErrInvalidGeometry, g.LineSize)
	case g.Lines() == 0:
		return fmt.Errorf("%w: llc smaller than one line", faults.ErrInvalidGeometry)
	case g.LLCSize%g.LineSize != 0:
		return fmt.Errorf("%w: llc size %d is not a whole number of %d-byte lines",
			faults.ErrInvalidGeometry, g.LLCSize, g.LineSize)
	}
	return nil
}

// Slices returns the number of LLC slices, taken as one per logical CPU.
func (g Geometry) Slices() int {
	return g.LogicalCPUs
}

// SetsPerSlice returns LLC sets per slice, or 0 when slices or associativity
// are unknown.
func (g Geometry) SetsPerSlice() uint64 {
	if g.LogicalCPUs <= 0 || g.Associativity <= 0 || g.LineSize == 0 {
		return 0
	}
	slice := g.LLCSize / uint64(g.LogicalCPUs)
	return slice / g.LineSize / uint64(g.Associativity)
}

// Report renders the geometry as the human-readable block printed by the
// geometry command.
func (g Geometry) Report() string {
	model := g.ModelName
	if model == "" {
		model = "unknown"
	}
	ht := "Disabled"
	if g.Hyperthreading {
		ht = "Enabled"
	}
	assoc := "Unknown"
	if g.Associativity > 0 {
		assoc = utils.Itoa(g.Associativity) + "-way"
	}
	clock := "Unknown"
	if g.ClockHz > 0 {
		clock = utils.Utoa(g.ClockHz/1_000_000) + " MHz"
	}
	huge := "No"
	if g.HugePagesTotal > 0 {
		huge = "Yes (Total: " + utils.Itoa(g.HugePagesTotal) +
			", Free: " + utils.Itoa(g.HugePagesFree) +
			", Size: " + utils.Utoa(g.HugePageSize/constants.KB) + " KB)"
	}

	return "Model: " + model + "\n" +
		"Logical CPUs: " + utils.Itoa(g.LogicalCPUs) + "\n" +
		"Hyper-Threading: " + ht + "\n" +
		"Nominal Clock: " + clock + "\n" +
		"LLC Size: " + utils.Utoa(g.LLCSize/constants.KB) + " KB\n" +
		"Cache Line Size: " + utils.Utoa(g.LineSize) + " bytes\n" +
		"LLC Lines: " + utils.Utoa(g.Lines()) + "\n" +
		"LLC Associativity: " + assoc + "\n" +
		"Sets per slice: " + utils.Utoa(g.SetsPerSlice()) + " sets\n" +
		"Hugepages Enabled: " + huge + "\n"
}
