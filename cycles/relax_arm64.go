// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: ARM64 Spin-Wait Hint
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && cgo && !noasm

package cycles

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// cpuRelax emits YIELD.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func cpuRelax() {
	C.cpu_yield()
}
