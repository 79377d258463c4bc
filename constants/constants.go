// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go - Probe defaults & experiment tunables
//
// Purpose:
//   - Compile-time defaults for sampling cadence, experiment shape and
//     output locations. The config package overrides them at runtime.
//
// Notes:
//   - Cadence defaults reproduce the classic setup: a 2 ms sampling interval
//     over a 5 s probe window, 50 rounds per site.
//   - Cycle budgets are derived from the nominal clock, not wall time.
//
// ⚠️ No runtime logic here; all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ─────────────────────────── Sampling Cadence ──────────────────────────────

const (
	// IntervalNormalizer converts Hz into cycles per millisecond.
	// 1 → second, 1000 → millisecond, 1000000 → microsecond.
	IntervalNormalizer = 1000

	// IntervalMs is the spacing between the starts of consecutive traversals.
	IntervalMs = 2

	// ProbeSeconds is the length of one probe window.
	ProbeSeconds = 5

	// WarmupSeconds is the length of the discarded warm-up probe.
	WarmupSeconds = 1
)

// ─────────────────────────── Cache Geometry ────────────────────────────────

const (
	// DefaultLineSize is assumed when the line size cannot be detected.
	DefaultLineSize = 64

	// KB and MB normalize sysfs sizes and report output.
	KB = 1 << 10
	MB = 1 << 20
)

// ─────────────────────────── Timing Store ──────────────────────────────────

const (
	// StoreCapacity is the initial sample capacity. At a 2 ms interval a
	// 5 s window needs ~2500 slots, so one doubling covers the default run.
	StoreCapacity = 2048

	// MaxSamples caps store growth (64 Mi samples = 512 MiB).
	// Growth beyond it is reported as an allocation failure.
	MaxSamples = 1 << 26
)

// ─────────────────────────── Experiment Shape ──────────────────────────────

const (
	// Rounds is the number of probe rounds per target site.
	Rounds = 50

	// ProbeCore is the logical CPU the sampling thread is pinned to.
	ProbeCore = 0

	// BrowserCore is the logical CPU the launched application is pinned to.
	BrowserCore = 2

	// Browser is the executable launched to generate cache pressure.
	Browser = "google-chrome"

	// BrowserFlag opens each target in a fresh window.
	BrowserFlag = "--new-window"

	// WarmupURL is loaded once before the measured rounds.
	WarmupURL = "https://www.google.co.il/"

	// OutputDir receives per-site CSV files.
	OutputDir = "."

	// EnvPrefix prefixes every configuration environment variable.
	EnvPrefix = "MEMORYGRAM_"

	// EnvFile is loaded if present.
	EnvFile = ".env"
)
