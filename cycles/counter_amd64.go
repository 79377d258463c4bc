//go:build amd64

package cycles

import (
	"memorygram/faults"

	"github.com/dterei/gotsc"
	"github.com/klauspost/cpuid/v2"
)

// tsc reads the time-stamp counter with RDTSCP; gotsc follows it with CPUID
// so later loads cannot start before the read retires.
type tsc struct{}

// Hardware returns the TSC counter. CPUs without RDTSCP are rejected since a
// plain RDTSC may be reordered around the traversal it brackets.
func Hardware() (Counter, error) {
	if !cpuid.CPU.Supports(cpuid.RDTSCP) {
		return nil, faults.ErrUnsupportedPlatform
	}
	return tsc{}, nil
}

// Name identifies the counter in reports.
func Name() string { return "rdtscp" }

// Frequency returns 0: an invariant TSC ticks at the nominal core clock,
// which geometry detection reports.
func Frequency() uint64 { return 0 }

// Overhead returns the cost in cycles of one bracketed empty measurement.
func Overhead() uint64 { return gotsc.TSCOverhead() }

//go:nosplit
//go:inline
func (tsc) Now() uint64 { return gotsc.BenchEnd() }

//go:nosplit
func (c tsc) SpinUntil(target uint64) { spin(c.Now, target) }
