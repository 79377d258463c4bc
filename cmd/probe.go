package cmd

import (
	"time"

	"memorygram/affinity"
	"memorygram/constants"
	"memorygram/control"
	"memorygram/debug"
	"memorygram/export"
	"memorygram/probe"
	"memorygram/timing"
	"memorygram/utils"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var probeOpts struct {
	site         string
	out          string
	intervalMs   int
	probeSeconds int
	core         int
	seed         uint64
	hugePages    bool
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one probe window without launching anything.",
	Long: "Times traversals for one window against whatever the machine is " +
		"doing and writes the samples to <out>/<site>.csv, replacing its content.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe()
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	f := probeCmd.Flags()
	f.StringVar(&probeOpts.site, "site", "idle", "site name used for the output file")
	f.StringVar(&probeOpts.out, "out", constants.OutputDir, "output directory")
	f.IntVar(&probeOpts.intervalMs, "interval-ms", constants.IntervalMs, "sampling interval in milliseconds")
	f.IntVar(&probeOpts.probeSeconds, "probe-seconds", constants.ProbeSeconds, "probe window in seconds")
	f.IntVar(&probeOpts.core, "probe-core", constants.ProbeCore, "CPU the probe is pinned to")
	f.Uint64Var(&probeOpts.seed, "seed", 0, "traversal order seed (0 = time-derived)")
	f.BoolVar(&probeOpts.hugePages, "hugepages", false, "back the eviction set with huge pages when available")
}

func runProbe() error {
	geo, counter, hz, err := setup()
	if err != nil {
		return err
	}

	engine, err := probe.New(geo, counter, probe.Options{Seed: probeOpts.seed, HugePages: probeOpts.hugePages})
	if err != nil {
		return err
	}
	atexit.Register(engine.Release)

	release, err := affinity.PinThread(probeOpts.core)
	if err != nil {
		debug.DropError("AFFINITY", err)
	}
	defer release()

	interval := hz / constants.IntervalNormalizer * uint64(probeOpts.intervalMs)
	duration := hz * uint64(probeOpts.probeSeconds)

	utils.PrintInfo("Probing...\n")
	store, started, elapsed, perr := window(engine, interval, duration)
	utils.PrintInfo("Done.\n")

	csv, err := export.NewCSV(probeOpts.out)
	if err != nil {
		return err
	}
	if err := csv.Truncate(probeOpts.site); err != nil {
		return err
	}
	run := &export.Run{
		ID:             export.NewID(),
		Site:           probeOpts.site,
		Started:        started,
		Elapsed:        elapsed,
		IntervalCycles: interval,
		DurationCycles: duration,
		Nodes:          engine.Nodes(),
		Seed:           engine.Seed(),
		Overruns:       engine.Overruns(),
		Geometry:       geo,
		Samples:        store.Samples(),
	}
	if err := csv.Export(run); err != nil {
		return err
	}
	utils.PrintInfo("Results written to: " + csv.Path(probeOpts.site) +
		" (" + utils.Itoa(store.Len()) + " samples, " + utils.Itoa(engine.Overruns()) + " overruns)\n")
	return perr
}

// windowRunner is the part of probe.Engine a single window needs.
type windowRunner interface {
	Run(interval, duration uint64) (*timing.Store, error)
}

// window runs one probe window with the collector off and reports when it
// started and how long it took.
func window(p windowRunner, interval, duration uint64) (*timing.Store, time.Time, time.Duration, error) {
	restore := probe.Quiesce()
	control.MarkProbing(true)
	started := time.Now()
	store, err := p.Run(interval, duration)
	elapsed := time.Since(started)
	control.MarkProbing(false)
	restore()
	return store, started, elapsed, err
}
