// relax_stub.go - no-op cpuRelax for builds without cgo or outside amd64/arm64
//
// The busy-wait still spins on the counter, just without the pipeline hint.

//go:build !(amd64 || arm64) || !cgo || noasm

package cycles

//go:nosplit
//go:inline
func cpuRelax() {}
