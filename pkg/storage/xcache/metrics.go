package xcache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Prometheus 指标导出
// =============================================================================

// StatsCollector 将 Facade 的统计计数导出为 Prometheus 指标。
// 采集时读取 Stats 快照，不维护独立状态，可安全并发采集。
//
// 使用方式：
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(xcache.NewStatsCollector(cache, "myapp"))
type StatsCollector struct {
	cache *Cache

	hits     *prometheus.Desc
	misses   *prometheus.Desc
	sets     *prometheus.Desc
	deletes  *prometheus.Desc
	clears   *prometheus.Desc
	hitRatio *prometheus.Desc
}

// 确保 StatsCollector 实现 prometheus.Collector 接口。
var _ prometheus.Collector = (*StatsCollector)(nil)

// NewStatsCollector 创建指标采集器。
// namespace 为空时指标名不带命名空间前缀。
// 所有指标携带 backend 标签标识当前后端。
func NewStatsCollector(c *Cache, namespace string) *StatsCollector {
	labels := prometheus.Labels{"backend": c.Backend()}

	return &StatsCollector{
		cache: c,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"Total number of cache hits.", nil, labels),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"Total number of cache misses.", nil, labels),
		sets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "sets_total"),
			"Total number of successful cache writes.", nil, labels),
		deletes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "deletes_total"),
			"Total number of deleted cache keys.", nil, labels),
		clears: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "clears_total"),
			"Total number of successful cache clears.", nil, labels),
		hitRatio: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hit_ratio"),
			"Cache hit ratio (0.0 - 1.0), 0 when no requests occurred.", nil, labels),
	}
}

// Describe 实现 prometheus.Collector。
func (sc *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sc.hits
	ch <- sc.misses
	ch <- sc.sets
	ch <- sc.deletes
	ch <- sc.clears
	ch <- sc.hitRatio
}

// Collect 实现 prometheus.Collector。
func (sc *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := sc.cache.Stats()

	ch <- prometheus.MustNewConstMetric(sc.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(sc.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(sc.sets, prometheus.CounterValue, float64(s.Sets))
	ch <- prometheus.MustNewConstMetric(sc.deletes, prometheus.CounterValue, float64(s.Deletes))
	ch <- prometheus.MustNewConstMetric(sc.clears, prometheus.CounterValue, float64(s.Clears))

	var ratio float64
	if s.TotalRequests > 0 {
		ratio = float64(s.Hits) / float64(s.TotalRequests)
	}
	ch <- prometheus.MustNewConstMetric(sc.hitRatio, prometheus.GaugeValue, ratio)
}
