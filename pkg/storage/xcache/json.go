package xcache

import (
	"context"
	"encoding/json"
	"time"
)

// =============================================================================
// 泛型序列化辅助
// =============================================================================

// GetJSON 读取 key 并将缓存的 JSON 文本解码为 T。
// 解码失败（存量数据损坏或类型不匹配）视为未命中并记录日志，
// 不向调用方抛出错误。
//
// 注意：字节层面的命中已计入 hits，解码失败只影响返回值，
// 不回滚统计——统计口径以存储访问为准。
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T

	data, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logWarn("xcache: decode failed, treating as miss", "key", key, "error", err)
		return zero, false
	}
	return v, true
}

// SetJSON 将 v 编码为 JSON 文本后写入 key。ttl <= 0 表示永不过期。
// 编码失败记录日志并返回 false，不写入任何数据。
func SetJSON[T any](ctx context.Context, c *Cache, key string, v T, ttl time.Duration) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.logWarn("xcache: encode failed, skip caching", "key", key, "error", err)
		return false
	}
	return c.SetWithTTL(ctx, key, data, ttl)
}
