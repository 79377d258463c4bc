// ════════════════════════════════════════════════════════════════════════════════════════════════
// Result Export
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Run Record & Sink Fan-Out
//
// Description:
//   A Run is one completed probe round: identity, context and the ordered cycle counts. Sinks
//   persist or publish it; the experiment hands every round to each configured sink in turn.
//
// Sinks:
//   - CSVSink:      one decimal integer per line, appended to <dir>/<site>.csv
//   - SQLiteSink:   runs + samples tables
//   - ManifestSink: JSON-lines run manifests with a sample digest
//   - ArrowSink:    one Arrow IPC file per run
//   - FeedSink:     ZeroMQ PUB socket, topic = site
//   - PlotSink:     one PNG plot per run
//
// ⚠️ Export happens after the probe and the launched application have stopped, never during
// ════════════════════════════════════════════════════════════════════════════════════════════════

package export

import (
	"errors"
	"time"

	"memorygram/geometry"

	"github.com/rs/xid"
)

// Run is one probe round handed to the sinks.
type Run struct {
	ID             string            `json:"id"`
	Site           string            `json:"site"`
	URL            string            `json:"url"`
	Round          int               `json:"round"`
	Started        time.Time         `json:"started"`
	Elapsed        time.Duration     `json:"elapsed_ns"`
	IntervalCycles uint64            `json:"interval_cycles"`
	DurationCycles uint64            `json:"duration_cycles"`
	Nodes          int               `json:"nodes"`
	Seed           uint64            `json:"seed"`
	Overruns       int               `json:"overruns"`
	Geometry       geometry.Geometry `json:"geometry"`
	Samples        []uint64          `json:"-"`
}

// NewID returns a fresh, time-sortable run id.
func NewID() string { return xid.New().String() }

// Exporter persists or publishes runs.
type Exporter interface {
	Export(r *Run) error
	Close() error
}

// Truncater is implemented by sinks that keep per-site files which are
// emptied at the start of an experiment.
type Truncater interface {
	Truncate(site string) error
}

// Multi fans a run out to every sink. All sinks are attempted; errors are
// joined.
type Multi []Exporter

// Export hands r to each sink.
func (m Multi) Export(r *Run) error {
	var errs []error
	for _, e := range m {
		if err := e.Export(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Truncate empties per-site output on every sink that keeps any.
func (m Multi) Truncate(site string) error {
	var errs []error
	for _, e := range m {
		if t, ok := e.(Truncater); ok {
			if err := t.Truncate(site); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, e := range m {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
