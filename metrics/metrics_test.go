package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveRound(t *testing.T) {
	c := New()
	c.ObserveRound("wikipedia", 2500, 3, 5*time.Second, nil)
	c.ObserveRound("wikipedia", 2400, 0, 5*time.Second, nil)
	c.ObserveRound("bbc", 10, 1, time.Second, errors.New("store full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.RoundsTotal.WithLabelValues("wikipedia")))
	assert.Equal(t, 4900.0, testutil.ToFloat64(c.SamplesTotal.WithLabelValues("wikipedia")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.OverrunsTotal.WithLabelValues("wikipedia")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FailuresTotal.WithLabelValues("bbc")))
	assert.Zero(t, testutil.ToFloat64(c.RoundsTotal.WithLabelValues("bbc")))
	assert.Positive(t, testutil.ToFloat64(c.LastRound))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.SetNodes(131072)
	c.ObserveRound("google", 100, 0, time.Second, nil)

	path := filepath.Join(t.TempDir(), "memorygram.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "memorygram_eviction_set_nodes 131072")
	assert.Contains(t, text, `memorygram_rounds_total{site="google"} 1`)
	assert.Contains(t, text, `memorygram_samples_total{site="google"} 100`)
}

func TestCollector_NilIsInert(t *testing.T) {
	var c *Collector
	c.ObserveRound("x", 1, 1, time.Second, nil)
	c.SetNodes(1)
	assert.NoError(t, c.WriteTextfile("/nonexistent/dir/file.prom"))
	assert.NoError(t, New().WriteTextfile(""))
}
