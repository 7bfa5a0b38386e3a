package xstrategy

import (
	"context"
	"time"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// Cache-Aside 策略
// =============================================================================

// FetchFunc 定义从数据源取回数据的函数类型。
type FetchFunc func(ctx context.Context) ([]byte, error)

// Aside 实现 Cache-Aside 模式：读缓存，未命中时回源并回填。
//
// 单次调用中 fetch 至多执行一次，无内部重试，也不做并发去重
// （同 key 的并发调用各自回源）。fetch 的错误原样传播给调用方，
// 此时缓存保持未写入状态。
type Aside struct {
	cache *xcache.Cache
}

// NewAside 创建 Cache-Aside 策略实例。
func NewAside(cache *xcache.Cache) (*Aside, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	return &Aside{cache: cache}, nil
}

// Get 读取 key；未命中时调用 fetch 回源，成功后以 ttl 回填缓存。
// ttl <= 0 表示回填数据永不过期。
// 回填是 best-effort：缓存写入失败不影响返回结果。
func (a *Aside) Get(ctx context.Context, key string, fetch FetchFunc, ttl time.Duration) ([]byte, error) {
	if fetch == nil {
		return nil, ErrNilFetch
	}

	if value, ok := a.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	a.cache.SetWithTTL(ctx, key, value, ttl)
	return value, nil
}
