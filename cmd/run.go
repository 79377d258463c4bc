package cmd

import (
	"fmt"

	"memorygram/config"
	"memorygram/control"
	"memorygram/cycles"
	"memorygram/debug"
	"memorygram/experiment"
	"memorygram/export"
	"memorygram/geometry"
	"memorygram/launcher"
	"memorygram/metrics"
	"memorygram/probe"
	"memorygram/utils"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var runCfg = config.Default()

var runCmd = &cobra.Command{
	Use:   "run [urls...]",
	Short: "Run a full experiment over the target sites.",
	Long: "Warms the cache once, then for every URL runs --rounds probe rounds " +
		"while the browser loads it, appending samples to <out>/<site>.csv and " +
		"any additional sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCfg.LoadEnv(runCfg.EnvFile, config.Changed(cmd)); err != nil {
			return err
		}
		if len(args) > 0 {
			runCfg.Targets = args
		}
		if err := runCfg.Validate(); err != nil {
			return err
		}
		return runExperiment(runCfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCfg.RegisterFlags(runCmd)
}

func runExperiment(cfg config.Config) error {
	geo, counter, hz, err := setup()
	if err != nil {
		return err
	}
	utils.PrintInfo(geo.Report())

	engine, err := probe.New(geo, counter, probe.Options{Seed: cfg.Seed, HugePages: cfg.HugePages})
	if err != nil {
		return err
	}
	atexit.Register(engine.Release)
	debug.DropMessage("PROBE", utils.Itoa(engine.Nodes())+" nodes, seed "+utils.Utoa(engine.Seed()))

	sinks, err := openSinks(cfg)
	if err != nil {
		return err
	}
	atexit.Register(func() {
		if err := sinks.Close(); err != nil {
			debug.DropError("EXPORT", err)
		}
	})

	detach := control.InstallSignalHandler()
	defer detach()

	runner := &experiment.Runner{
		Prober:   engine,
		Launcher: launcher.NewBrowser(cfg.Browser, cfg.BrowserCore),
		Sinks:    sinks,
		Metrics:  metrics.New(),
		Config:   cfg,
		Interval: cfg.IntervalCycles(hz),
		Duration: cfg.ProbeCycles(hz),
		Warmup:   cfg.WarmupCycles(hz),
	}
	sum, err := runner.Run()
	utils.PrintInfo("Rounds: " + utils.Itoa(sum.Rounds) +
		", samples: " + utils.Itoa(sum.Samples) +
		", overrun intervals: " + utils.Itoa(sum.Overruns) + "\n")
	return err
}

// setup detects the geometry, selects the hardware counter and resolves
// the counter rate budgets are derived from.
func setup() (geometry.Geometry, cycles.Counter, uint64, error) {
	geo, err := geometry.Detect()
	if err != nil {
		return geo, nil, 0, err
	}
	counter, err := cycles.Hardware()
	if err != nil {
		return geo, nil, 0, err
	}
	hz := cycles.Rate(geo.ClockHz)
	if hz == 0 {
		return geo, nil, 0, fmt.Errorf("counter rate unknown: no nominal clock detected")
	}
	return geo, counter, hz, nil
}

// openSinks opens the CSV sink and every optional sink the config names.
// Sinks opened before a failure are closed.
func openSinks(cfg config.Config) (export.Multi, error) {
	var sinks export.Multi
	fail := func(err error) (export.Multi, error) {
		sinks.Close()
		return nil, err
	}

	csv, err := export.NewCSV(cfg.OutDir)
	if err != nil {
		return fail(err)
	}
	sinks = append(sinks, csv)

	if cfg.SQLitePath != "" {
		s, err := export.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.ManifestPath != "" {
		s, err := export.OpenManifest(cfg.ManifestPath)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.ArrowDir != "" {
		s, err := export.NewArrow(cfg.ArrowDir)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.PlotDir != "" {
		s, err := export.NewPlot(cfg.PlotDir)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.FeedEndpoint != "" {
		s, err := export.NewFeed(cfg.FeedEndpoint)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
