// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - Cold-path diagnostic logging (zero fmt)
//
// Purpose:
//   - Logs setup, teardown and failure paths of the probe without fmt.
//   - Used around the probe: geometry detection, launcher errors, exports.
//
// Notes:
//   - Lines are pre-concatenated and written straight to stderr.
//   - Output format: "<PREFIX>: <message>\n".
//
// ⚠️ Never invoke inside the sampling loop: a write perturbs the cache.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "memorygram/utils"

// DropError logs an error under a prefix. A nil error prints the prefix alone,
// which is used as a cheap trace tag.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs a tagged diagnostic line.
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
