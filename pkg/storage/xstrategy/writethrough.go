package xstrategy

import (
	"context"
	"time"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// Write-Through 策略
// =============================================================================

// WriteThrough 实现写穿透模式的缓存侧契约：
// 缓存写入在调用返回前同步完成。
//
// 记录系统（system of record）的写入由外部协作方负责，
// 不在本策略范围内——调用方应先完成持久化写入，再调用 Set
// 同步缓存，或反之，取决于业务的一致性要求。
type WriteThrough struct {
	cache *xcache.Cache
}

// NewWriteThrough 创建 Write-Through 策略实例。
func NewWriteThrough(cache *xcache.Cache) (*WriteThrough, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	return &WriteThrough{cache: cache}, nil
}

// Set 同步写入缓存，返回时写入已完成。ttl <= 0 表示永不过期。
func (w *WriteThrough) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return w.cache.SetWithTTL(ctx, key, value, ttl)
}
