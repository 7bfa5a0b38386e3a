package xstore

import (
	"context"
	"time"
)

// =============================================================================
// Store 接口定义
// =============================================================================

// Store 定义缓存存储后端的统一能力接口。
// 由进程内存储（MemoryStore）和远程键值存储（RedisStore）分别实现。
//
// TTL 语义：ttl <= 0 表示永不过期，数据保留至显式 Delete/Clear。
// Get/Has 对已过期的条目一律视为不存在，过期条目在访问时惰性清理。
//
// 错误约定：进程内实现除入参错误和 ErrClosed 外不会失败；
// 远程实现的网络/协议错误原样向上抛出，由上层（Facade）统一降级处理。
type Store interface {
	// Get 读取 key 对应的值。
	// key 不存在或已过期时返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key。ttl <= 0 表示永不过期。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除 key，返回是否实际删除了数据。
	Delete(ctx context.Context, key string) (bool, error)

	// Clear 清空本存储拥有的全部 key。
	// 远程实现只清理配置前缀下的 key，不影响前缀之外的数据。
	Clear(ctx context.Context) error

	// Has 判断 key 是否存在。
	// 应用与 Get 相同的过期检查，但不取出值本身。
	Has(ctx context.Context, key string) (bool, error)

	// Ping 探测存储是否可用。
	Ping(ctx context.Context) error

	// Close 关闭存储。重复调用返回 ErrClosed。
	Close() error
}

// =============================================================================
// 扩展能力
// =============================================================================

// Enumerator 定义可枚举 key 的存储扩展能力。
// 仅远程存储实现；用于模式失效（pattern invalidation）等批量操作。
// 上层通过类型断言发现此能力：store.(Enumerator)。
type Enumerator interface {
	// Keys 返回匹配 pattern 的全部 key（返回值不含配置前缀）。
	// pattern 使用 Redis glob 语法，如 "user:*"。
	Keys(ctx context.Context, pattern string) ([]string, error)

	// DeleteMany 批量删除 key，返回实际删除的数量。
	// keys 为空时直接返回 0。
	DeleteMany(ctx context.Context, keys []string) (int64, error)
}
