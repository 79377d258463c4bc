// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: x86-64 Spin-Wait Hint
//
// Description:
//   PAUSE inside the interval busy-wait. Keeps the sibling hyperthread (where the launched
//   application may run) from being starved by the spin, and avoids the memory-order
//   mis-speculation flush when the loop exits.
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && cgo && !noasm

package cycles

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// cpuRelax emits PAUSE.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
func cpuRelax() {
	C.cpu_pause()
}
