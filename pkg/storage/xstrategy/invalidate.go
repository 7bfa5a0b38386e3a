package xstrategy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// 失效策略
// =============================================================================

// InvalidatorOption 定义配置失效策略的函数类型。
type InvalidatorOption func(*Invalidator)

// WithInvalidatorLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithInvalidatorLogger(logger *slog.Logger) InvalidatorOption {
	return func(i *Invalidator) {
		i.logger = logger
	}
}

// Invalidator 提供三种缓存失效方式：直接失效、模式失效、时间失效。
// 全部经由 Facade 执行，不直接触碰存储内部。
type Invalidator struct {
	cache  *xcache.Cache
	logger *slog.Logger
}

// NewInvalidator 创建失效策略实例。
func NewInvalidator(cache *xcache.Cache, opts ...InvalidatorOption) (*Invalidator, error) {
	if cache == nil {
		return nil, ErrNilCache
	}

	i := &Invalidator{
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Direct 失效单个 key，返回是否实际删除了数据。
func (i *Invalidator) Direct(ctx context.Context, key string) bool {
	return i.cache.Delete(ctx, key)
}

// Pattern 批量失效匹配 pattern 的全部 key，返回删除数量。
// pattern 使用 Redis glob 语法，如 "user:*"，作用于配置前缀之内。
//
// 仅对支持 key 枚举的后端（远程）有意义；进程内后端下是
// 记录日志的空操作，返回 0。后端故障同样降级为 0 并记录日志，
// 不向调用方抛出错误。
func (i *Invalidator) Pattern(ctx context.Context, pattern string) int64 {
	n, err := i.cache.DeleteByPattern(ctx, pattern)
	if err != nil {
		if errors.Is(err, xcache.ErrPatternUnsupported) {
			i.logWarn("xstrategy: pattern invalidation unsupported by backend, skipped",
				"pattern", pattern)
		} else {
			i.logWarn("xstrategy: pattern invalidation failed",
				"pattern", pattern, "error", err)
		}
		return 0
	}
	return n
}

// TimeBased 是时间失效的显式空操作：过期由存储的原生 TTL 机制
// 处理，无需任何额外动作。保留此方法是为了让三种失效方式在
// 调用方代码中呈现同一形态。
func (i *Invalidator) TimeBased(ttl time.Duration) {
	// TTL 到期由后端原生过期机制负责
}

// logWarn 记录告警日志（如果配置了 Logger）。
func (i *Invalidator) logWarn(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}
