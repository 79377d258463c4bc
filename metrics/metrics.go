// ════════════════════════════════════════════════════════════════════════════════════════════════
// Collection Metrics
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Bookkeeping Counters
//
// Description:
//   Counts what an experiment collected: rounds, samples, overrun intervals and failures per
//   site, plus the eviction set size and probe wall time. Nothing here looks at sample values.
//   The registry is private and written out as a node-exporter textfile after every round, so
//   a scrape never touches the probing process.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the experiment metrics.
type Collector struct {
	Registry *prometheus.Registry

	RoundsTotal   *prometheus.CounterVec
	SamplesTotal  *prometheus.CounterVec
	OverrunsTotal *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	ProbeSeconds  *prometheus.HistogramVec
	EvictionNodes prometheus.Gauge
	LastRound     prometheus.Gauge
}

// New registers every metric on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	site := []string{"site"}

	return &Collector{
		Registry: reg,
		RoundsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygram",
			Name:      "rounds_total",
			Help:      "Completed probe rounds",
		}, site),
		SamplesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygram",
			Name:      "samples_total",
			Help:      "Traversal samples recorded",
		}, site),
		OverrunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygram",
			Name:      "overrun_intervals_total",
			Help:      "Intervals whose traversal ran past the next interval start",
		}, site),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygram",
			Name:      "round_failures_total",
			Help:      "Rounds that ended with an error",
		}, site),
		ProbeSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memorygram",
			Name:      "probe_wall_seconds",
			Help:      "Wall time of one probe window",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30},
		}, site),
		EvictionNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "memorygram",
			Name:      "eviction_set_nodes",
			Help:      "Cache lines in the eviction set",
		}),
		LastRound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "memorygram",
			Name:      "last_round_timestamp_seconds",
			Help:      "Unix time the last round finished",
		}),
	}
}

// ObserveRound records one finished round. A nil collector ignores it.
func (c *Collector) ObserveRound(site string, samples, overruns int, wall time.Duration, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.FailuresTotal.WithLabelValues(site).Inc()
	} else {
		c.RoundsTotal.WithLabelValues(site).Inc()
	}
	c.SamplesTotal.WithLabelValues(site).Add(float64(samples))
	c.OverrunsTotal.WithLabelValues(site).Add(float64(overruns))
	c.ProbeSeconds.WithLabelValues(site).Observe(wall.Seconds())
	c.LastRound.SetToCurrentTime()
}

// SetNodes records the eviction set size.
func (c *Collector) SetNodes(n int) {
	if c == nil {
		return
	}
	c.EvictionNodes.Set(float64(n))
}

// WriteTextfile atomically writes the registry to path in the text
// exposition format. An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.Registry)
}
