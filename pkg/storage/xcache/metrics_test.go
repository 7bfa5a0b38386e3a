package xcache

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCollector_ExportsAllMetrics(t *testing.T) {
	c := newMemoryCache(t, Config{})
	collector := NewStatsCollector(c, "testapp")

	assert.Equal(t, 6, testutil.CollectAndCount(collector))
}

func TestStatsCollector_ValuesMatchStats(t *testing.T) {
	c := newMemoryCache(t, Config{})
	ctx := context.Background()

	c.Set(ctx, "key", []byte("value"))
	c.Get(ctx, "key")     // hit
	c.Get(ctx, "missing") // miss

	collector := NewStatsCollector(c, "")

	expected := `
		# HELP cache_hits_total Total number of cache hits.
		# TYPE cache_hits_total counter
		cache_hits_total{backend="memory"} 1
		# HELP cache_misses_total Total number of cache misses.
		# TYPE cache_misses_total counter
		cache_misses_total{backend="memory"} 1
		# HELP cache_hit_ratio Cache hit ratio (0.0 - 1.0), 0 when no requests occurred.
		# TYPE cache_hit_ratio gauge
		cache_hit_ratio{backend="memory"} 0.5
	`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"cache_hits_total", "cache_misses_total", "cache_hit_ratio")
	assert.NoError(t, err)
}

func TestStatsCollector_RegistersCleanly(t *testing.T) {
	c := newMemoryCache(t, Config{})

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewStatsCollector(c, "testapp")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}
