package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
)

// ============================================================================
// INTEGER FORMATTING TESTS
// ============================================================================

func TestItoa(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "Zero", input: 0, expected: "0"},
		{name: "Single digit", input: 5, expected: "5"},
		{name: "Two digits", input: 42, expected: "42"},
		{name: "Negative", input: -17, expected: "-17"},
		{name: "Large number", input: 987654321, expected: "987654321"},
		{name: "Maximum int32", input: 2147483647, expected: "2147483647"},
		{name: "Minimum int64", input: math.MinInt64, expected: "-9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Itoa(tt.input)
			if result != tt.expected {
				t.Errorf("Itoa(%d) = %q, expected %q", tt.input, result, tt.expected)
			}
			if std := strconv.Itoa(tt.input); result != std {
				t.Errorf("Itoa(%d) = %q, strconv.Itoa = %q", tt.input, result, std)
			}
		})
	}
}

func TestUtoa_Boundaries(t *testing.T) {
	for _, n := range []uint64{0, 1, 9, 10, 99, 100, 999, 1000, 1 << 32, math.MaxUint64} {
		t.Run(fmt.Sprintf("boundary_%d", n), func(t *testing.T) {
			if got, want := Utoa(n), strconv.FormatUint(n, 10); got != want {
				t.Errorf("Utoa(%d) = %q, expected %q", n, got, want)
			}
		})
	}
}

func TestAppendUint_PreservesPrefix(t *testing.T) {
	buf := []byte("cycles=")
	buf = AppendUint(buf, 123456)
	buf = append(buf, '\n')
	if string(buf) != "cycles=123456\n" {
		t.Errorf("AppendUint produced %q", buf)
	}
}

func TestAppendUint_ZeroAllocation(t *testing.T) {
	buf := make([]byte, 0, 64)
	allocs := testing.AllocsPerRun(1000, func() {
		buf = AppendUint(buf[:0], 18446744073709551615)
	})
	if allocs > 0 {
		t.Errorf("AppendUint() allocated memory: %f allocs/op", allocs)
	}
}

// ============================================================================
// CONSOLE OUTPUT TESTS
// ============================================================================

func TestPrintWarning(t *testing.T) {
	testCases := []string{
		"",
		"Warning: test message\n",
		"Message with unicode: 测试警告消息\n",
		strings.Repeat("Long message ", 100) + "\n",
	}

	for _, msg := range testCases {
		t.Run(fmt.Sprintf("message_len_%d", len(msg)), func(t *testing.T) {
			// Should not panic
			PrintWarning(msg)
		})
	}
}

func TestPrintWarning_ZeroAllocation(t *testing.T) {
	msg := "Test warning message\n"
	allocs := testing.AllocsPerRun(100, func() {
		PrintWarning(msg)
	})
	if allocs > 0 {
		t.Errorf("PrintWarning() allocated memory: %f allocs/op", allocs)
	}
}

// ============================================================================
// MIXER TESTS
// ============================================================================

func TestMix64(t *testing.T) {
	inputs := []uint64{1, 0x123456789abcdef0, 0xfffffffffffffffe}

	if Mix64(0) != 0 {
		t.Errorf("Mix64(0) should be 0, got %X", Mix64(0))
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%X", in), func(t *testing.T) {
			first, second := Mix64(in), Mix64(in)
			if first != second {
				t.Errorf("Mix64() not deterministic: first=%X, second=%X", first, second)
			}
			if first == Mix64(in+1) {
				t.Errorf("Mix64() collision: Mix64(%X) == Mix64(%X)", in, in+1)
			}
		})
	}
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkAppendUint(b *testing.B) {
	buf := make([]byte, 0, 32)
	for i := 0; i < b.N; i++ {
		buf = AppendUint(buf[:0], uint64(i))
	}
}
