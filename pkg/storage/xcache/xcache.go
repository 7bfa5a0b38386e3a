package xcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/cachekit/pkg/storage/xstore"
)

// 后端标识。
const (
	// BackendRedis 表示当前使用远程后端。
	BackendRedis = "redis"

	// BackendMemory 表示当前使用进程内后端。
	BackendMemory = "memory"
)

// =============================================================================
// 配置选项
// =============================================================================

// Options 定义 Facade 的构造选项。
type Options struct {
	// Logger 用于记录降级和告警日志。
	// 默认使用 slog.Default()，传入 nil 禁用日志输出。
	Logger *slog.Logger

	// RedisClient 复用外部已初始化的 Redis 客户端。
	// 设置后不再按 Config.Redis 自行建连；客户端生命周期由调用方管理。
	RedisClient redis.UniversalClient

	// Store 直接注入后端存储，跳过选择逻辑。主要用于测试。
	Store xstore.Store

	// Backend 与 Store 搭配使用的后端标识。
	Backend string

	// StoreOptions 附加给远程存储构造的选项（如 WithBreaker）。
	StoreOptions []xstore.RedisOption
}

// Option 定义配置 Facade 的函数类型。
type Option func(*Options)

// defaultOptions 返回默认的构造选项。
func defaultOptions() *Options {
	return &Options{
		Logger: slog.Default(),
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRedisClient 复用外部已初始化的 Redis 客户端。
// 存活探测与降级逻辑照常生效；Close 不会关闭此客户端。
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *Options) {
		o.RedisClient = client
	}
}

// WithStore 直接注入后端存储并指定其标识，跳过选择逻辑。
// backend 为空时按存储能力推断：实现 Enumerator 视为 redis，否则视为 memory。
func WithStore(backend string, store xstore.Store) Option {
	return func(o *Options) {
		o.Backend = backend
		o.Store = store
	}
}

// WithStoreOptions 附加远程存储的构造选项（如 xstore.WithBreaker）。
// 仅在由本包构造远程存储时生效。
func WithStoreOptions(opts ...xstore.RedisOption) Option {
	return func(o *Options) {
		o.StoreOptions = append(o.StoreOptions, opts...)
	}
}

// =============================================================================
// Cache Facade
// =============================================================================

// counters 是进程生命周期内单调递增的操作计数。
// 使用原子计数器，多线程环境下无需额外加锁。
type counters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	clears  atomic.Uint64
}

// Cache 是统一的缓存门面。
//
// 初始化时完成一次后端选择：优先远程后端（建连 + 存活探测），
// 失败则回退到进程内后端；此后后端不再切换，后续的远程故障
// 按操作降级（未命中 / false）而非换后端。
//
// 所有操作不向调用方抛出后端错误：故障被吸收为"如同缓存为空"，
// 并记录告警日志。统计计数反映降级后的结果（失败的 Get 计为未命中）。
type Cache struct {
	store      xstore.Store
	backend    string
	defaultTTL time.Duration
	cfg        Config
	logger     *slog.Logger
	stats      counters

	warmMu sync.Mutex
	warmer *warmer

	closed atomic.Bool
}

// New 按配置构造缓存实例。
//
// 后端选择策略（显式声明，无运行时环境探测）：
//  1. WithStore 注入 → 直接使用
//  2. WithRedisClient 注入或 Config.Redis.Addr 非空 → 存活探测，
//     成功用远程后端，失败记录告警并回退进程内后端
//  3. 其余情况 → 进程内后端
func New(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	cfg = cfg.withDefaults()
	c := &Cache{
		defaultTTL: cfg.DefaultTTL(),
		cfg:        cfg,
		logger:     options.Logger,
	}

	store, backend, err := c.selectStore(ctx, options)
	if err != nil {
		return nil, err
	}
	c.store = store
	c.backend = backend
	return c, nil
}

// selectStore 执行一次性的后端选择。
func (c *Cache) selectStore(ctx context.Context, options *Options) (xstore.Store, string, error) {
	if options.Store != nil {
		backend := options.Backend
		if backend == "" {
			backend = BackendMemory
			if _, ok := options.Store.(xstore.Enumerator); ok {
				backend = BackendRedis
			}
		}
		return options.Store, backend, nil
	}

	if options.RedisClient != nil {
		store, err := c.probeRedis(ctx, options.RedisClient, options.StoreOptions)
		if err == nil {
			return store, BackendRedis, nil
		}
		c.logWarn("xcache: injected redis client unavailable, falling back to memory store",
			"error", err)
		return xstore.NewMemory(), BackendMemory, nil
	}

	if c.cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         c.cfg.Redis.Addr,
			Password:     c.cfg.Redis.Password,
			DB:           c.cfg.Redis.DB,
			DialTimeout:  c.cfg.Redis.dialTimeout(),
			ReadTimeout:  time.Duration(c.cfg.Redis.ReadTimeoutMS) * time.Millisecond,
			WriteTimeout: time.Duration(c.cfg.Redis.WriteTimeoutMS) * time.Millisecond,
			PoolSize:     c.cfg.Redis.PoolSize,
		})
		storeOpts := append([]xstore.RedisOption{xstore.WithOwnedClient()}, options.StoreOptions...)
		store, err := c.probeRedis(ctx, client, storeOpts)
		if err == nil {
			return store, BackendRedis, nil
		}
		// 探测失败时关闭自建客户端，避免连接池泄漏
		_ = client.Close()
		c.logWarn("xcache: redis backend unreachable, falling back to memory store",
			"addr", c.cfg.Redis.Addr, "error", err)
	}

	return xstore.NewMemory(), BackendMemory, nil
}

// probeRedis 构造远程存储并执行存活探测。
func (c *Cache) probeRedis(ctx context.Context, client redis.UniversalClient, storeOpts []xstore.RedisOption) (xstore.Store, error) {
	opts := append([]xstore.RedisOption{xstore.WithKeyPrefix(c.cfg.KeyPrefix)}, storeOpts...)
	store, err := xstore.NewRedis(client, opts...)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.Redis.dialTimeout())
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return nil, err
	}
	return store, nil
}

// Backend 返回当前激活的后端标识。
func (c *Cache) Backend() string {
	return c.backend
}

// DefaultTTL 返回配置的默认过期时间。
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// =============================================================================
// 基础操作
// =============================================================================

// Get 读取 key 对应的值。
// 命中计 hits，未命中计 misses；后端故障记录日志并降级为未命中。
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, xstore.ErrNotFound) {
			c.logWarn("xcache: get failed, treating as miss", "key", key, "error", err)
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return value, true
}

// Set 使用默认 TTL 写入 key。
func (c *Cache) Set(ctx context.Context, key string, value []byte) bool {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL 写入 key。ttl <= 0 表示永不过期。
// 仅在写入成功时计 sets；失败记录日志并返回 false。
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logWarn("xcache: set failed", "key", key, "error", err)
		return false
	}
	c.stats.sets.Add(1)
	return true
}

// Delete 删除 key。
// 仅在存储报告实际删除了数据时计 deletes。
func (c *Cache) Delete(ctx context.Context, key string) bool {
	ok, err := c.store.Delete(ctx, key)
	if err != nil {
		c.logWarn("xcache: delete failed", "key", key, "error", err)
		return false
	}
	if ok {
		c.stats.deletes.Add(1)
	}
	return ok
}

// Clear 清空当前后端拥有的全部 key。
// 成功时 clears 计数加一（按调用计，不按 key 计）。
func (c *Cache) Clear(ctx context.Context) bool {
	if err := c.store.Clear(ctx); err != nil {
		c.logWarn("xcache: clear failed", "error", err)
		return false
	}
	c.stats.clears.Add(1)
	return true
}

// Has 判断 key 是否存在。
// 纯委托，不影响命中/未命中统计（存在性检查不计入请求）。
func (c *Cache) Has(ctx context.Context, key string) bool {
	ok, err := c.store.Has(ctx, key)
	if err != nil {
		c.logWarn("xcache: has failed", "key", key, "error", err)
		return false
	}
	return ok
}

// DeleteByPattern 删除匹配 pattern 的全部 key，返回删除数量。
// 每个被删除的 key 计入 deletes。
// 当前后端不支持 key 枚举时返回 ErrPatternUnsupported。
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	enum, ok := c.store.(xstore.Enumerator)
	if !ok {
		return 0, ErrPatternUnsupported
	}

	keys, err := enum.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := enum.DeleteMany(ctx, keys)
	if err != nil {
		return 0, err
	}
	c.stats.deletes.Add(uint64(n))
	return n, nil
}

// =============================================================================
// 生命周期
// =============================================================================

// Close 关闭缓存：停止预热调度并关闭后端存储。
// 幂等语义：重复调用返回 ErrClosed，从未连接过远程后端时调用也安全。
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.StopWarming()
	return c.store.Close()
}

// logWarn 记录告警日志（如果配置了 Logger）。
func (c *Cache) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// logInfo 记录信息日志（如果配置了 Logger）。
func (c *Cache) logInfo(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
