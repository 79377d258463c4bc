// ════════════════════════════════════════════════════════════════════════════════════════════════
// Application Launcher
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Cache Pressure Source
//
// Description:
//   Starts the application whose cache activity is being observed (a browser opening one URL),
//   on its own core and in its own process group, and tears the whole group down after the
//   probe. Browsers fork helpers freely; signalling the group reaches all of them.
//
// Lifecycle:
//   Open ──► probe runs on another core ──► Stop (SIGKILL to the group, then reap)
// ════════════════════════════════════════════════════════════════════════════════════════════════

package launcher

import (
	"io"

	"memorygram/constants"
)

// Launcher opens a URL in a fresh instance of the observed application.
type Launcher interface {
	Open(url string) (Process, error)
}

// Process is a running application instance.
type Process interface {
	// Pid returns the leader's process id, which is also the group id.
	Pid() int

	// Stop kills the whole process group and waits for the leader. Calling
	// it again is a no-op.
	Stop() error
}

// Browser launches Path with Args followed by the URL.
type Browser struct {
	Path   string   // Executable, looked up in PATH
	Args   []string // Arguments placed before the URL
	Core   int      // CPU the instance is pinned to; negative leaves it unpinned
	Stdout io.Writer
	Stderr io.Writer
}

// NewBrowser returns the default browser launcher pinned to core.
func NewBrowser(path string, core int) *Browser {
	if path == "" {
		path = constants.Browser
	}
	return &Browser{
		Path: path,
		Args: []string{constants.BrowserFlag},
		Core: core,
	}
}
