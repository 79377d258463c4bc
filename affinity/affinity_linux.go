// affinity_linux.go - CPU pinning via sched_setaffinity(2)

//go:build linux

package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Supported reports whether pinning has an effect on this platform.
const Supported = true

// PinThread locks the calling goroutine to its OS thread and binds that
// thread to cpu. The lock is kept until the returned release is called.
func PinThread(cpu int) (release func(), err error) {
	runtime.LockOSThread()
	if err := PinPID(0, cpu); err != nil {
		runtime.UnlockOSThread()
		return func() {}, err
	}
	return runtime.UnlockOSThread, nil
}

// PinPID binds the thread or process pid (0 = calling thread) to cpu.
func PinPID(pid, cpu int) error {
	if cpu < 0 || cpu >= runtime.NumCPU() {
		return fmt.Errorf("affinity: cpu %d out of range [0,%d)", cpu, runtime.NumCPU())
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		return fmt.Errorf("affinity: pin pid %d to cpu %d: %w", pid, cpu, err)
	}
	return nil
}

// Current returns the CPUs the calling thread may run on.
func Current() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, err
	}
	cpus := make([]int, 0, set.Count())
	for i := 0; i < runtime.NumCPU(); i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
