// ════════════════════════════════════════════════════════════════════════════════════════════════
// Experiment Orchestration
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Warm-Up, Rounds, Export
//
// Description:
//   Drives a full collection: pin the probing thread, empty per-site outputs, run one discarded
//   warm-up round, then for every target site run the configured number of rounds. A round
//   opens the site in a fresh browser group, probes for the full window, kills the group and
//   hands the samples to every sink.
//
// Round Timeline:
//   Open(url) ──► GC off ──► probe window ──► GC on ──► Stop(group) ──► export ──► metrics
//
// Stop handling:
//   control.Stopping is checked between rounds only. A probe window always runs to its end.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package experiment

import (
	"errors"
	"fmt"
	"time"

	"memorygram/affinity"
	"memorygram/config"
	"memorygram/control"
	"memorygram/debug"
	"memorygram/export"
	"memorygram/faults"
	"memorygram/geometry"
	"memorygram/launcher"
	"memorygram/metrics"
	"memorygram/probe"
	"memorygram/timing"
	"memorygram/utils"
)

// Prober runs one probe window. probe.Engine implements it.
type Prober interface {
	Run(interval, duration uint64) (*timing.Store, error)
	Nodes() int
	Overruns() int
	Seed() uint64
	Geometry() geometry.Geometry
}

// Runner carries everything an experiment needs.
type Runner struct {
	Prober   Prober
	Launcher launcher.Launcher
	Sinks    export.Multi
	Metrics  *metrics.Collector // nil disables metrics
	Config   config.Config

	Interval uint64 // sampling interval in counter cycles
	Duration uint64 // probe window in counter cycles
	Warmup   uint64 // warm-up window in counter cycles; 0 skips the warm-up

	Now func() time.Time // wall clock for reports; nil means time.Now
}

// Summary reports what an experiment collected.
type Summary struct {
	Rounds   int
	Samples  int
	Overruns int
	Stopped  bool // ended early on a stop request
	Elapsed  time.Duration
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes the experiment. It returns on the first failed round with
// the summary so far; partial samples of a store failure are still exported.
func (r *Runner) Run() (sum Summary, err error) {
	start := r.now()
	defer func() {
		sum.Elapsed = r.now().Sub(start)
		utils.PrintInfo("Execution time: " + sum.Elapsed.String() + "\n")
	}()

	release, pinErr := affinity.PinThread(r.Config.ProbeCore)
	if pinErr != nil {
		debug.DropError("AFFINITY", pinErr)
	}
	defer release()

	// ───── 1. Resolve sites and empty their outputs ─────
	sites := make([]string, len(r.Config.Targets))
	for i, url := range r.Config.Targets {
		site, err := export.SiteName(url)
		if err != nil {
			return sum, err
		}
		sites[i] = site
		if err := r.Sinks.Truncate(site); err != nil {
			return sum, err
		}
	}
	r.Metrics.SetNodes(r.Prober.Nodes())

	// ───── 2. Warm-up round, samples discarded ─────
	if r.Config.WarmupURL != "" && r.Warmup > 0 && !control.Stopping() {
		utils.PrintInfo("Warming up: " + r.Config.WarmupURL + "\n")
		if _, err := r.round(r.Config.WarmupURL, "warmup", -1, r.Warmup); err != nil {
			return sum, fmt.Errorf("warm-up: %w", err)
		}
	}

	// ───── 3. Measured rounds ─────
	for i, url := range r.Config.Targets {
		for round := 0; round < r.Config.Rounds; round++ {
			if control.Stopping() {
				sum.Stopped = true
				debug.DropMessage("EXPERIMENT", "stopped before "+sites[i]+" round "+utils.Itoa(round))
				return sum, nil
			}

			utils.PrintInfo("Probing site: " + sites[i] + " (round " + utils.Itoa(round) + ")\n")
			run, err := r.round(url, sites[i], round, r.Duration)
			if run != nil {
				sum.Samples += len(run.Samples)
				sum.Overruns += run.Overruns
				r.Metrics.ObserveRound(sites[i], len(run.Samples), run.Overruns, run.Elapsed, err)
				if xerr := r.Sinks.Export(run); xerr != nil {
					err = errors.Join(err, xerr)
				}
				if merr := r.Metrics.WriteTextfile(r.Config.MetricsPath); merr != nil {
					debug.DropError("METRICS", merr)
				}
			}
			if err != nil {
				return sum, fmt.Errorf("%s round %d: %w", sites[i], round, err)
			}
			sum.Rounds++
		}
	}
	return sum, nil
}

// round opens url, probes for duration cycles and tears the browser down.
// The returned run is nil only when nothing was measured.
func (r *Runner) round(url, site string, round int, duration uint64) (*export.Run, error) {
	proc, err := r.Launcher.Open(url)
	if err != nil {
		return nil, err
	}

	restore := probe.Quiesce()
	control.MarkProbing(true)
	started := r.now()
	store, perr := r.Prober.Run(r.Interval, duration)
	elapsed := r.now().Sub(started)
	control.MarkProbing(false)
	restore()

	if err := proc.Stop(); err != nil {
		debug.DropError("LAUNCHER", err)
	}
	if perr != nil && !errors.Is(perr, faults.ErrAllocationFailure) {
		return nil, perr
	}

	run := &export.Run{
		ID:             export.NewID(),
		Site:           site,
		URL:            url,
		Round:          round,
		Started:        started,
		Elapsed:        elapsed,
		IntervalCycles: r.Interval,
		DurationCycles: duration,
		Nodes:          r.Prober.Nodes(),
		Seed:           r.Prober.Seed(),
		Overruns:       r.Prober.Overruns(),
		Geometry:       r.Prober.Geometry(),
		Samples:        append([]uint64(nil), store.Samples()...),
	}
	return run, perr
}
