// ════════════════════════════════════════════════════════════════════════════════════════════════
// Runtime Configuration
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Layered Settings
//
// Description:
//   Settings resolve in three layers: compile-time defaults from constants, then a .env file
//   and MEMORYGRAM_* environment variables, then command-line flags. A flag the user set always
//   wins; the environment only fills flags left at their default.
//
// Cycle budgets:
//   interval = clockHz / IntervalNormalizer * intervalMs
//   duration = clockHz * probeSeconds
// ════════════════════════════════════════════════════════════════════════════════════════════════

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"memorygram/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// DefaultTargets are probed when no URLs are given.
var DefaultTargets = []string{"https://www.wikipedia.org", "https://www.bbc.com/"}

// Config is the resolved experiment configuration.
type Config struct {
	Targets       []string
	Rounds        int
	IntervalMs    int
	ProbeSeconds  int
	WarmupSeconds int
	WarmupURL     string
	Browser       string
	ProbeCore     int
	BrowserCore   int
	OutDir        string
	SQLitePath    string
	ArrowDir      string
	PlotDir       string
	ManifestPath  string
	FeedEndpoint  string
	MetricsPath   string
	Seed          uint64
	HugePages     bool
	EnvFile       string
}

// Default returns the compile-time configuration.
func Default() Config {
	return Config{
		Targets:       append([]string(nil), DefaultTargets...),
		Rounds:        constants.Rounds,
		IntervalMs:    constants.IntervalMs,
		ProbeSeconds:  constants.ProbeSeconds,
		WarmupSeconds: constants.WarmupSeconds,
		WarmupURL:     constants.WarmupURL,
		Browser:       constants.Browser,
		ProbeCore:     constants.ProbeCore,
		BrowserCore:   constants.BrowserCore,
		OutDir:        constants.OutputDir,
		EnvFile:       constants.EnvFile,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// FLAG AND ENVIRONMENT BINDING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// binding ties a flag to its environment variable and a setter.
type binding struct {
	flag string
	set  func(c *Config, v string) error
}

func intSetter(field func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetter(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

var bindings = []binding{
	{"rounds", intSetter(func(c *Config) *int { return &c.Rounds })},
	{"interval-ms", intSetter(func(c *Config) *int { return &c.IntervalMs })},
	{"probe-seconds", intSetter(func(c *Config) *int { return &c.ProbeSeconds })},
	{"warmup-seconds", intSetter(func(c *Config) *int { return &c.WarmupSeconds })},
	{"warmup-url", stringSetter(func(c *Config) *string { return &c.WarmupURL })},
	{"browser", stringSetter(func(c *Config) *string { return &c.Browser })},
	{"probe-core", intSetter(func(c *Config) *int { return &c.ProbeCore })},
	{"browser-core", intSetter(func(c *Config) *int { return &c.BrowserCore })},
	{"out", stringSetter(func(c *Config) *string { return &c.OutDir })},
	{"sqlite", stringSetter(func(c *Config) *string { return &c.SQLitePath })},
	{"arrow", stringSetter(func(c *Config) *string { return &c.ArrowDir })},
	{"plot", stringSetter(func(c *Config) *string { return &c.PlotDir })},
	{"manifest", stringSetter(func(c *Config) *string { return &c.ManifestPath })},
	{"feed", stringSetter(func(c *Config) *string { return &c.FeedEndpoint })},
	{"metrics", stringSetter(func(c *Config) *string { return &c.MetricsPath })},
	{"seed", func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return err
		}
		c.Seed = n
		return nil
	}},
	{"hugepages", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.HugePages = b
		return nil
	}},
	{"targets", func(c *Config, v string) error {
		c.Targets = c.Targets[:0]
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.Targets = append(c.Targets, t)
			}
		}
		return nil
	}},
}

// EnvName returns the environment variable for a flag: "probe-core" →
// MEMORYGRAM_PROBE_CORE.
func EnvName(flag string) string {
	return constants.EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// LoadEnv loads path into the process environment if the file exists, then
// applies every MEMORYGRAM_* variable whose flag is not in skip. Variables
// already set in the environment take precedence over the file.
func (c *Config) LoadEnv(path string, skip func(flag string) bool) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	for _, b := range bindings {
		if skip != nil && skip(b.flag) {
			continue
		}
		v, ok := os.LookupEnv(EnvName(b.flag))
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvName(b.flag), v, err)
		}
	}
	return nil
}

// RegisterFlags binds the experiment flags of cmd to c's fields, using c's
// current values as defaults.
func (c *Config) RegisterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&c.Rounds, "rounds", c.Rounds, "probe rounds per target")
	f.IntVar(&c.IntervalMs, "interval-ms", c.IntervalMs, "sampling interval in milliseconds")
	f.IntVar(&c.ProbeSeconds, "probe-seconds", c.ProbeSeconds, "probe window in seconds")
	f.IntVar(&c.WarmupSeconds, "warmup-seconds", c.WarmupSeconds, "warm-up probe window in seconds")
	f.StringVar(&c.WarmupURL, "warmup-url", c.WarmupURL, "URL loaded once before measuring (empty skips)")
	f.StringVar(&c.Browser, "browser", c.Browser, "browser executable")
	f.IntVar(&c.ProbeCore, "probe-core", c.ProbeCore, "CPU the probe is pinned to")
	f.IntVar(&c.BrowserCore, "browser-core", c.BrowserCore, "CPU the browser is pinned to")
	f.StringVar(&c.OutDir, "out", c.OutDir, "directory for per-site CSV files")
	f.StringVar(&c.SQLitePath, "sqlite", c.SQLitePath, "SQLite database for runs and samples")
	f.StringVar(&c.ArrowDir, "arrow", c.ArrowDir, "directory for Arrow IPC files")
	f.StringVar(&c.PlotDir, "plot", c.PlotDir, "directory for per-run PNG plots")
	f.StringVar(&c.ManifestPath, "manifest", c.ManifestPath, "JSON-lines run manifest")
	f.StringVar(&c.FeedEndpoint, "feed", c.FeedEndpoint, "ZeroMQ PUB endpoint, e.g. tcp://*:5556")
	f.StringVar(&c.MetricsPath, "metrics", c.MetricsPath, "Prometheus textfile path")
	f.Uint64Var(&c.Seed, "seed", c.Seed, "traversal order seed (0 = time-derived)")
	f.BoolVar(&c.HugePages, "hugepages", c.HugePages, "back the eviction set with huge pages when available")
	f.StringVar(&c.EnvFile, "env", c.EnvFile, ".env file to load")
}

// Changed returns a skip function reporting flags the user set on cmd.
func Changed(cmd *cobra.Command) func(string) bool {
	return func(flag string) bool {
		f := cmd.Flags().Lookup(flag)
		return f != nil && f.Changed
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// VALIDATION AND DERIVED BUDGETS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Validate rejects settings no experiment can run with.
func (c *Config) Validate() error {
	switch {
	case c.Rounds <= 0:
		return fmt.Errorf("config: rounds must be positive, got %d", c.Rounds)
	case c.IntervalMs <= 0:
		return fmt.Errorf("config: interval must be positive, got %d ms", c.IntervalMs)
	case c.ProbeSeconds <= 0:
		return fmt.Errorf("config: probe window must be positive, got %d s", c.ProbeSeconds)
	case c.WarmupSeconds < 0:
		return fmt.Errorf("config: warm-up window cannot be negative")
	case c.ProbeCore < 0 || c.BrowserCore < 0:
		return fmt.Errorf("config: cores must be non-negative")
	case c.ProbeCore == c.BrowserCore:
		return fmt.Errorf("config: probe and browser share core %d", c.ProbeCore)
	case len(c.Targets) == 0:
		return fmt.Errorf("config: no targets")
	}
	return nil
}

// IntervalCycles returns the sampling interval in counter cycles.
func (c *Config) IntervalCycles(clockHz uint64) uint64 {
	return clockHz / constants.IntervalNormalizer * uint64(c.IntervalMs)
}

// ProbeCycles returns the probe window in counter cycles.
func (c *Config) ProbeCycles(clockHz uint64) uint64 {
	return clockHz * uint64(c.ProbeSeconds)
}

// WarmupCycles returns the warm-up window in counter cycles.
func (c *Config) WarmupCycles(clockHz uint64) uint64 {
	return clockHz * uint64(c.WarmupSeconds)
}
