package utils

import "os"

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting - Zero-Alloc Appenders
///////////////////////////////////////////////////////////////////////////////

// AppendUint appends the decimal form of v to dst.
// Used by the CSV exporter to emit one sample per line without fmt.
//
//go:nosplit
//go:inline
func AppendUint(dst []byte, v uint64) []byte {
	var buf [20]byte
	i := len(buf)
	for v >= 10 {
		i--
		q := v / 10
		buf[i] = byte('0' + v - q*10)
		v = q
	}
	i--
	buf[i] = byte('0' + v)
	return append(dst, buf[i:]...)
}

// Utoa converts an unsigned integer to its decimal string.
// One allocation for the resulting string.
//
//go:nosplit
//go:inline
func Utoa(v uint64) string {
	var buf [20]byte
	return string(AppendUint(buf[:0], v))
}

// Itoa converts a signed integer to its decimal string.
// Used in cold-path log lines.
//
//go:nosplit
//go:inline
func Itoa(n int) string {
	if n >= 0 {
		return Utoa(uint64(n))
	}
	var buf [21]byte
	buf[0] = '-'
	return string(AppendUint(buf[:1], uint64(-int64(n))))
}

///////////////////////////////////////////////////////////////////////////////
// Console Output - Direct Descriptor Writes
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg to stderr as-is. The caller adds the newline.
//
//go:nosplit
//go:inline
func PrintWarning(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// PrintInfo writes msg to stdout as-is. The caller adds the newline.
//
//go:nosplit
//go:inline
func PrintInfo(msg string) {
	_, _ = os.Stdout.WriteString(msg)
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers - Seed Derivation
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to derive the second PCG stream word from a single shuffle seed.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
