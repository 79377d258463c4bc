// ════════════════════════════════════════════════════════════════════════════════════════════════
// Probe Engine
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Eviction Set + Counter + Store
//
// Description:
//   Owns everything one probe needs: the eviction set built for the detected geometry, the
//   counter it is timed with and the store the samples land in. An engine is built once and run
//   once per round; the store is reset at the start of every run and reused.
//
// Threading:
//   Run belongs to a single goroutine that the caller has locked to its OS thread and pinned.
//   Nothing in here spawns goroutines or touches the eviction set while a run is in progress.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package probe

import (
	"fmt"

	"memorygram/constants"
	"memorygram/cycles"
	"memorygram/evictset"
	"memorygram/faults"
	"memorygram/geometry"
	"memorygram/timing"
)

// Options tune engine construction. Zero values pick the defaults.
type Options struct {
	Seed            uint64             // Traversal order seed; 0 derives one from the clock
	Allocator       evictset.Allocator // Node source; nil maps an arena
	HugePages       bool               // Try huge pages for the default arena
	InitialCapacity int                // Store capacity before the first doubling
	MaxSamples      int                // Store growth cap
}

// Engine is the probe state for one eviction set.
type Engine struct {
	geo      geometry.Geometry
	counter  cycles.Counter
	set      *evictset.Set
	store    *timing.Store
	overruns int
}

// New builds the eviction set for geo and an empty store. A nil counter
// selects the hardware counter.
func New(geo geometry.Geometry, counter cycles.Counter, opts Options) (*Engine, error) {
	if counter == nil {
		hw, err := cycles.Hardware()
		if err != nil {
			return nil, err
		}
		counter = hw
	}
	if opts.InitialCapacity <= 0 {
		opts.InitialCapacity = constants.StoreCapacity
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = constants.MaxSamples
	}

	set, err := evictset.Build(geo, evictset.Options{
		Seed:      opts.Seed,
		Allocator: opts.Allocator,
		HugePages: opts.HugePages,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		geo:     geo,
		counter: counter,
		set:     set,
		store:   timing.New(opts.InitialCapacity, opts.MaxSamples),
	}, nil
}

// Run probes for duration cycles at one sample per interval cycles. The
// returned store is the engine's own and is overwritten by the next Run.
// On a store failure the partial store is returned with the error. A
// released engine returns ErrInvalidGeometry.
func (e *Engine) Run(interval, duration uint64) (*timing.Store, error) {
	if e == nil || e.set == nil || e.store == nil {
		return nil, fmt.Errorf("%w: engine released", faults.ErrInvalidGeometry)
	}
	e.store.Reset()
	overruns, err := Sample(e.counter, e.set, interval, duration, e.store)
	e.overruns = overruns
	return e.store, err
}

// Nodes returns the eviction set size.
func (e *Engine) Nodes() int {
	if e.set == nil {
		return 0
	}
	return e.set.Len()
}

// Set exposes the eviction set for reports.
func (e *Engine) Set() *evictset.Set { return e.set }

// Seed returns the traversal order seed.
func (e *Engine) Seed() uint64 {
	if e.set == nil {
		return 0
	}
	return e.set.Seed()
}

// Overruns returns how many intervals of the last run overran.
func (e *Engine) Overruns() int { return e.overruns }

// Geometry returns the geometry the engine was built for.
func (e *Engine) Geometry() geometry.Geometry { return e.geo }

// Store returns the sample store.
func (e *Engine) Store() *timing.Store { return e.store }

// Counter returns the counter runs are timed with.
func (e *Engine) Counter() cycles.Counter { return e.counter }

// Release frees the eviction set node by node, then the store. Safe on a
// nil, zero-value or already-released engine.
func (e *Engine) Release() {
	if e == nil {
		return
	}
	if e.set != nil {
		e.set.Release()
		e.set = nil
	}
	if e.store != nil {
		e.store.Release()
		e.store = nil
	}
	e.counter = nil
	e.overruns = 0
	e.geo = geometry.Geometry{}
}
