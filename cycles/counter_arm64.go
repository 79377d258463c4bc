//go:build arm64

package cycles

// cntvct reads CNTVCT_EL0 behind an ISB. Implemented in counter_arm64.s.
func cntvct() uint64

// cntfrq reads CNTFRQ_EL0, the generic timer rate in Hz.
func cntfrq() uint64

// generic is the ARMv8 generic timer. It ticks at CNTFRQ_EL0 rather than
// the core clock, so budgets must be derived from that rate.
type generic struct{}

// Hardware returns the generic timer counter.
func Hardware() (Counter, error) {
	return generic{}, nil
}

// Name identifies the counter in reports.
func Name() string { return "cntvct_el0" }

// Frequency returns the counter rate in Hz.
func Frequency() uint64 { return cntfrq() }

// Overhead returns the cost of two back-to-back reads.
func Overhead() uint64 {
	a := cntvct()
	b := cntvct()
	return b - a
}

//go:nosplit
//go:inline
func (generic) Now() uint64 { return cntvct() }

//go:nosplit
func (c generic) SpinUntil(target uint64) { spin(c.Now, target) }
