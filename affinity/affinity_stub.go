// affinity_stub.go - CPU affinity no-op for platforms without sched_setaffinity(2)
//
// The probe still runs; the caller is responsible for keeping other work off
// the measuring core.

//go:build !linux

package affinity

import "runtime"

// Supported reports whether pinning has an effect on this platform.
const Supported = false

// PinThread locks the goroutine to its OS thread; no CPU binding is applied.
func PinThread(cpu int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}

// PinPID is a no-op.
func PinPID(pid, cpu int) error { return nil }

// Current returns every CPU.
func Current() ([]int, error) {
	cpus := make([]int, runtime.NumCPU())
	for i := range cpus {
		cpus[i] = i
	}
	return cpus, nil
}
