package cycles

// Virtual is a deterministic Counter for dry runs and tests. Time only moves
// by Tick on every Now call, by explicit Advance calls, and by SpinUntil,
// which jumps straight to the requested target.
//
// A Virtual with Tick == 0 models a free counter read and a wait that lands
// exactly on its target.
type Virtual struct {
	now  uint64
	Tick uint64 // Added after every Now read
}

// NewVirtual returns a counter starting at start.
func NewVirtual(start, tick uint64) *Virtual {
	return &Virtual{now: start, Tick: tick}
}

// Now returns the current virtual time and then advances it by Tick.
func (v *Virtual) Now() uint64 {
	t := v.now
	v.now += v.Tick
	return t
}

// SpinUntil moves virtual time forward to target if it lies in the future.
func (v *Virtual) SpinUntil(target uint64) {
	if v.now < target {
		v.now = target
	}
}

// Advance moves virtual time forward by n, standing in for work such as a
// traversal.
func (v *Virtual) Advance(n uint64) {
	v.now += n
}

// Peek returns the current virtual time without advancing it.
func (v *Virtual) Peek() uint64 {
	return v.now
}
