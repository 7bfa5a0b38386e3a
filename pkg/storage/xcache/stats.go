package xcache

import (
	"context"
	"fmt"
)

// =============================================================================
// 统计信息
// =============================================================================

// Stats 是缓存统计的一次性快照。
// 计数器为进程生命周期内单调递增，仅 ResetStats 可清零。
type Stats struct {
	// Hits 命中次数。
	Hits uint64 `json:"hits"`

	// Misses 未命中次数（含后端故障降级的未命中）。
	Misses uint64 `json:"misses"`

	// Sets 成功写入次数。
	Sets uint64 `json:"sets"`

	// Deletes 实际删除数据的次数（含模式失效逐 key 计数）。
	Deletes uint64 `json:"deletes"`

	// Clears 成功清空的调用次数。
	Clears uint64 `json:"clears"`

	// TotalRequests 读请求总数，恒等于 Hits + Misses。
	TotalRequests uint64 `json:"total_requests"`

	// HitRate 命中率，两位小数的百分比字符串；无请求时为 "0.00%"。
	HitRate string `json:"hit_rate"`

	// Backend 当前激活的后端标识（redis / memory）。
	Backend string `json:"backend"`
}

// Stats 返回当前统计快照。
// 各计数器独立原子读取，极端并发下快照不保证全局一致，
// 但单个计数值始终准确。
func (c *Cache) Stats() Stats {
	hits := c.stats.hits.Load()
	misses := c.stats.misses.Load()
	total := hits + misses

	return Stats{
		Hits:          hits,
		Misses:        misses,
		Sets:          c.stats.sets.Load(),
		Deletes:       c.stats.deletes.Load(),
		Clears:        c.stats.clears.Load(),
		TotalRequests: total,
		HitRate:       formatHitRate(hits, total),
		Backend:       c.backend,
	}
}

// ResetStats 清零全部计数器，不触碰缓存数据。
func (c *Cache) ResetStats() {
	c.stats.hits.Store(0)
	c.stats.misses.Store(0)
	c.stats.sets.Store(0)
	c.stats.deletes.Store(0)
	c.stats.clears.Store(0)
}

// formatHitRate 格式化命中率。total 为 0 时返回 "0.00%"，避免除零。
func formatHitRate(hits, total uint64) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(hits)/float64(total)*100)
}

// =============================================================================
// 健康检查
// =============================================================================

// Health 是健康检查的结果，永远可用，不携带错误。
type Health struct {
	// Healthy 当前后端的存活探测是否通过。
	Healthy bool `json:"healthy"`

	// Backend 当前激活的后端标识。
	Backend string `json:"backend"`

	// Stats 检查时刻的统计快照。
	Stats Stats `json:"stats"`
}

// HealthCheck 探测当前后端并返回状态与统计。
// 任何探测失败都只体现在 Healthy 字段上，不向调用方抛出错误。
func (c *Cache) HealthCheck(ctx context.Context) Health {
	h := Health{
		Backend: c.backend,
		Stats:   c.Stats(),
	}
	if c.closed.Load() {
		return h
	}
	if err := c.store.Ping(ctx); err != nil {
		c.logWarn("xcache: health check failed", "backend", c.backend, "error", err)
		return h
	}
	h.Healthy = true
	return h
}
