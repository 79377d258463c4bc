package probe

import (
	"runtime"
	rtdebug "runtime/debug"
)

// Quiesce collects garbage and switches the collector off for a probe
// window so no GC cycle sweeps the cache mid-measurement. The returned
// function restores the previous setting.
func Quiesce() (restore func()) {
	runtime.GC()
	prev := rtdebug.SetGCPercent(-1)
	return func() { rtdebug.SetGCPercent(prev) }
}
