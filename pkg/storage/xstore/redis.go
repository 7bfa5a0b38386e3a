package xstore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// =============================================================================
// RedisStore 配置选项
// =============================================================================

// RedisOptions 定义远程存储的配置选项。
type RedisOptions struct {
	// KeyPrefix 所有 key 的命名空间前缀。
	// Clear/Keys 只作用于此前缀下的 key。默认为 "cache:"。
	KeyPrefix string

	// ScanCount 枚举 key 时单次 SCAN 的批量大小。默认为 100。
	ScanCount int64

	// OwnsClient 标记客户端由本存储创建并负责关闭。
	// 默认为 false：注入的客户端生命周期由调用方管理。
	OwnsClient bool

	// BreakerSettings 熔断器配置。
	// 为 nil 时不启用熔断；启用后连续失败达到阈值时快速失败，
	// 熔断开启期间的操作返回 gobreaker.ErrOpenState，由上层降级。
	BreakerSettings *gobreaker.Settings
}

// RedisOption 定义配置远程存储的函数类型。
type RedisOption func(*RedisOptions)

// defaultRedisOptions 返回默认的远程存储配置。
func defaultRedisOptions() *RedisOptions {
	return &RedisOptions{
		KeyPrefix: "cache:",
		ScanCount: 100,
	}
}

// WithKeyPrefix 设置 key 命名空间前缀。
// 空字符串表示不加前缀，此时 Clear 会清理整个数据库下匹配 "*" 的 key，慎用。
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *RedisOptions) {
		o.KeyPrefix = prefix
	}
}

// WithScanCount 设置枚举 key 时单次 SCAN 的批量大小。
// 如果 n <= 0，将忽略此设置并使用默认值。
func WithScanCount(n int64) RedisOption {
	return func(o *RedisOptions) {
		if n > 0 {
			o.ScanCount = n
		}
	}
}

// WithOwnedClient 标记客户端由本存储负责关闭。
// 当存储自行构造客户端（而非复用外部实例）时使用。
func WithOwnedClient() RedisOption {
	return func(o *RedisOptions) {
		o.OwnsClient = true
	}
}

// WithBreaker 启用熔断器保护远程操作。
// 传入零值 Settings 时使用默认策略：连续失败 5 次后熔断，30 秒后半开探测。
// redis.Nil（key 不存在）不计为失败。
func WithBreaker(st gobreaker.Settings) RedisOption {
	return func(o *RedisOptions) {
		o.BreakerSettings = &st
	}
}

// =============================================================================
// RedisStore 实现
// =============================================================================

// RedisStore 是基于 Redis 的远程 Store 实现。
// 值以原始字节存储（调用方负责文本序列化），所有 key 带配置前缀。
//
// 错误处理：网络/协议错误原样向上抛出，不在本层降级或记录日志，
// 由 Facade 统一转换为安全返回值（未命中 / false）。
type RedisStore struct {
	client  redis.UniversalClient
	options *RedisOptions
	breaker *gobreaker.CircuitBreaker[any]
	closed  atomic.Bool
}

// 确保 RedisStore 同时实现 Store 和 Enumerator 接口。
var (
	_ Store      = (*RedisStore)(nil)
	_ Enumerator = (*RedisStore)(nil)
)

// NewRedis 创建远程存储实例。
// client 必须是已初始化的 redis.UniversalClient。
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultRedisOptions()
	for _, opt := range opts {
		opt(options)
	}

	s := &RedisStore{
		client:  client,
		options: options,
	}
	if options.BreakerSettings != nil {
		s.breaker = gobreaker.NewCircuitBreaker[any](buildBreakerSettings(*options.BreakerSettings))
	}
	return s, nil
}

// buildBreakerSettings 补全熔断器配置的缺省项。
func buildBreakerSettings(st gobreaker.Settings) gobreaker.Settings {
	if st.Name == "" {
		st.Name = "xstore-redis"
	}
	if st.Timeout <= 0 {
		st.Timeout = 30 * time.Second
	}
	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if st.IsSuccessful == nil {
		// key 不存在是正常的未命中，不计为后端故障
		st.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		}
	}
	return st
}

// do 执行一次远程操作，启用熔断时经由熔断器。
func (s *RedisStore) do(op func() (any, error)) (any, error) {
	if s.breaker == nil {
		return op()
	}
	return s.breaker.Execute(op)
}

// Get 读取 key 对应的值。key 不存在时返回 ErrNotFound。
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	result, err := s.do(func() (any, error) {
		return s.client.Get(ctx, s.options.KeyPrefix+key).Bytes()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	value, ok := result.([]byte)
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set 写入 key。ttl <= 0 映射为无过期时间。
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	if ttl < 0 {
		ttl = 0
	}
	_, err := s.do(func() (any, error) {
		return nil, s.client.Set(ctx, s.options.KeyPrefix+key, value, ttl).Err()
	})
	return err
}

// Delete 删除 key，返回是否实际删除了数据。
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	result, err := s.do(func() (any, error) {
		return s.client.Del(ctx, s.options.KeyPrefix+key).Result()
	})
	if err != nil {
		return false, err
	}
	n, _ := result.(int64)
	return n > 0, nil
}

// Clear 清空配置前缀下的全部 key，前缀之外的数据不受影响。
func (s *RedisStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, err := s.do(func() (any, error) {
		return nil, s.scanAndDelete(ctx, s.options.KeyPrefix+"*")
	})
	return err
}

// Has 通过 EXISTS 判断 key 是否存在，不取出值。
// 过期检查由 Redis 原生 TTL 机制保证。
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	result, err := s.do(func() (any, error) {
		return s.client.Exists(ctx, s.options.KeyPrefix+key).Result()
	})
	if err != nil {
		return false, err
	}
	n, _ := result.(int64)
	return n > 0, nil
}

// Ping 探测 Redis 连接是否存活。
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, err := s.do(func() (any, error) {
		return nil, s.client.Ping(ctx).Err()
	})
	return err
}

// Close 关闭存储。重复调用返回 ErrClosed。
// 仅当客户端由本存储创建（WithOwnedClient）时才关闭底层连接。
func (s *RedisStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if s.options.OwnsClient {
		return s.client.Close()
	}
	return nil
}

// Client 返回底层的 redis.UniversalClient。
// 用于执行本接口未覆盖的原生 Redis 操作。
func (s *RedisStore) Client() redis.UniversalClient {
	return s.client
}

// =============================================================================
// Enumerator 实现
// =============================================================================

// Keys 返回配置前缀下匹配 pattern 的全部 key，返回值已去除前缀。
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	result, err := s.do(func() (any, error) {
		return s.scanKeys(ctx, s.options.KeyPrefix+pattern)
	})
	if err != nil {
		return nil, err
	}
	full, _ := result.([]string)

	keys := make([]string, 0, len(full))
	prefixLen := len(s.options.KeyPrefix)
	for _, k := range full {
		keys = append(keys, k[prefixLen:])
	}
	return keys, nil
}

// DeleteMany 批量删除 key，返回实际删除的数量。
func (s *RedisStore) DeleteMany(ctx context.Context, keys []string) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if len(keys) == 0 {
		return 0, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.options.KeyPrefix + k
	}

	result, err := s.do(func() (any, error) {
		return s.client.Del(ctx, full...).Result()
	})
	if err != nil {
		return 0, err
	}
	n, _ := result.(int64)
	return n, nil
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// scanKeys 用 SCAN 游标遍历匹配 pattern 的全部 key。
// 不使用 KEYS 命令，避免大 key 空间下阻塞 Redis。
func (s *RedisStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, s.options.ScanCount).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// scanAndDelete 删除匹配 pattern 的全部 key，逐批执行。
func (s *RedisStore) scanAndDelete(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, s.options.ScanCount).Result()
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
