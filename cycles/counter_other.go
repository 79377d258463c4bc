//go:build !amd64 && !arm64

package cycles

import "memorygram/faults"

// Hardware reports that no serializing counter exists on this architecture.
func Hardware() (Counter, error) {
	return nil, faults.ErrUnsupportedPlatform
}

// Name identifies the counter in reports.
func Name() string { return "none" }

// Frequency is unknown without a counter.
func Frequency() uint64 { return 0 }

// Overhead is undefined without a counter.
func Overhead() uint64 { return 0 }
