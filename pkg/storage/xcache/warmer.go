package xcache

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// =============================================================================
// 缓存预热
// =============================================================================

// WarmFunc 定义预热时取回单个 key 数据的函数类型。
// 配置只声明 key 集合，数据来源由调用方提供。
type WarmFunc func(ctx context.Context, key string) ([]byte, error)

// cron 调度精度为秒级，低于 1 秒的周期配置会被提升。
const minWarmingInterval = time.Second

// warmer 持有预热调度状态。
type warmer struct {
	cache *Cache
	fn    WarmFunc
	cron  *cron.Cron
}

// StartWarming 启动周期性预热：立即执行一次全量预热，
// 之后按 Config.Warming.IntervalMS 周期重复。
// 单个 key 取回失败只记录日志并跳过，不影响其余 key。
//
// 配置未启用预热时返回 ErrWarmingDisabled；重复启动返回 ErrWarmingStarted。
func (c *Cache) StartWarming(fn WarmFunc) error {
	if fn == nil {
		return ErrNilWarmFunc
	}
	if c.closed.Load() {
		return ErrClosed
	}
	if !c.cfg.Warming.Enabled {
		return ErrWarmingDisabled
	}

	c.warmMu.Lock()
	defer c.warmMu.Unlock()
	if c.warmer != nil {
		return ErrWarmingStarted
	}

	interval := time.Duration(c.cfg.Warming.IntervalMS) * time.Millisecond
	if interval < minWarmingInterval {
		interval = minWarmingInterval
	}

	w := &warmer{
		cache: c,
		fn:    fn,
		cron:  cron.New(),
	}
	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		w.warmOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("xcache: schedule warming: %w", err)
	}

	// 首轮同步执行，启动返回后预热 key 立即可用
	w.warmOnce(context.Background())
	w.cron.Start()
	c.warmer = w

	c.logInfo("xcache: warming started",
		"interval", interval, "keys", len(c.cfg.Warming.Keys))
	return nil
}

// StopWarming 停止预热调度并等待进行中的任务结束。
// 未启动时调用是安全的空操作。Close 会自动调用本方法。
func (c *Cache) StopWarming() {
	c.warmMu.Lock()
	w := c.warmer
	c.warmer = nil
	c.warmMu.Unlock()

	if w != nil {
		<-w.cron.Stop().Done()
	}
}

// warmOnce 按声明顺序预热全部配置 key。
func (w *warmer) warmOnce(ctx context.Context) {
	for _, key := range w.cache.cfg.Warming.Keys {
		value, err := w.fn(ctx, key)
		if err != nil {
			w.cache.logWarn("xcache: warm key failed, skipped", "key", key, "error", err)
			continue
		}
		w.cache.Set(ctx, key, value)
	}
}
