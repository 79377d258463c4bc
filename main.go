// ════════════════════════════════════════════════════════════════════════════════════════════════
// memorygram - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Command Dispatch
//
// Description:
//   Cache occupancy probe. Builds an eviction set covering the last-level cache, times
//   traversals of it at a fixed rate while a browser loads a target site, and records the
//   resulting cycle-count series per site and round.
//
// Commands:
//   - run:       warm-up, then rounds per target site, exported to every configured sink
//   - probe:     a single probe window with nothing launched
//   - geometry:  detected cache and CPU configuration
//   - calibrate: counter overhead and idle traversal cost
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import "memorygram/cmd"

func main() {
	cmd.Execute()
}
