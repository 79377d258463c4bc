// control.go - Global stop and activity flags for the experiment loop
// ============================================================================
// EXPERIMENT CONTROL
// ============================================================================
//
// Control provides the process-wide signaling used around the probe:
//
//   • stop    - set by SIGINT/SIGTERM; the orchestrator checks it between
//               rounds, never inside a probe window
//   • probing - set while a probe window is open so a signal arriving mid
//               window is reported as deferred
//
// The sampling loop has no cancellation of its own. A second signal while
// the flag is already set exits the process through atexit so sinks are
// still flushed and the eviction set is released.

package control

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"memorygram/debug"

	"github.com/tebeka/atexit"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	stop    uint32 // 1 = finish the current round and stop
	probing uint32 // 1 = a probe window is open
)

// ============================================================================
// STOP FLAG
// ============================================================================

// Shutdown requests that the experiment stop after the current round.
//
//go:nosplit
//go:inline
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Stopping reports whether Shutdown has been requested.
//
//go:nosplit
//go:inline
func Stopping() bool {
	return atomic.LoadUint32(&stop) == 1
}

// ============================================================================
// ACTIVITY FLAG
// ============================================================================

// MarkProbing records whether a probe window is currently open.
//
//go:nosplit
//go:inline
func MarkProbing(active bool) {
	var v uint32
	if active {
		v = 1
	}
	atomic.StoreUint32(&probing, v)
}

// Probing reports whether a probe window is currently open.
//
//go:nosplit
//go:inline
func Probing() bool {
	return atomic.LoadUint32(&probing) == 1
}

// Reset clears both flags. Used between experiments and by tests.
func Reset() {
	atomic.StoreUint32(&stop, 0)
	atomic.StoreUint32(&probing, 0)
}

// ============================================================================
// SIGNAL INTEGRATION
// ============================================================================

// InstallSignalHandler routes SIGINT and SIGTERM into the stop flag.
// The returned function detaches the handler.
func InstallSignalHandler() func() {
	sigs := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for {
			select {
			case sig := <-sigs:
				handleSignal(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func handleSignal(sig os.Signal) {
	if Stopping() {
		debug.DropMessage("SIGNAL", sig.String()+" received twice, exiting")
		atexit.Exit(130)
		return
	}
	Shutdown()
	if Probing() {
		debug.DropMessage("SIGNAL", sig.String()+" deferred until the probe window closes")
		return
	}
	debug.DropMessage("SIGNAL", sig.String()+" stopping after the current round")
}
