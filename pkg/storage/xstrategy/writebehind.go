package xstrategy

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// Write-Behind 配置选项
// =============================================================================

// WriteFunc 定义向记录系统持久化单条数据的函数类型。
type WriteFunc func(ctx context.Context, key string, value []byte) error

// WriteBehindOptions 定义写回策略的配置选项。
type WriteBehindOptions struct {
	// DrainDelay 入队后到触发排空的延迟。默认为 1 秒。
	DrainDelay time.Duration

	// MaxAttempts 单条数据持久化的最大尝试次数（含首次）。默认为 3。
	MaxAttempts int

	// RetryBaseDelay 重试退避的基础间隔，实际间隔线性递增：
	// 第 n 次重试前等待 n * RetryBaseDelay。默认为 100 毫秒。
	RetryBaseDelay time.Duration

	// Logger 用于记录排空失败日志。
	// 默认使用 slog.Default()，传入 nil 禁用日志输出。
	Logger *slog.Logger
}

// WriteBehindOption 定义配置写回策略的函数类型。
type WriteBehindOption func(*WriteBehindOptions)

// defaultWriteBehindOptions 返回默认的写回配置。
func defaultWriteBehindOptions() *WriteBehindOptions {
	return &WriteBehindOptions{
		DrainDelay:     time.Second,
		MaxAttempts:    3,
		RetryBaseDelay: 100 * time.Millisecond,
		Logger:         slog.Default(),
	}
}

// WithDrainDelay 设置排空触发延迟。
// 如果 d <= 0，将忽略此设置并使用默认值。
func WithDrainDelay(d time.Duration) WriteBehindOption {
	return func(o *WriteBehindOptions) {
		if d > 0 {
			o.DrainDelay = d
		}
	}
}

// WithMaxAttempts 设置单条数据持久化的最大尝试次数（含首次）。
// 如果 n <= 0，将忽略此设置并使用默认值。
func WithMaxAttempts(n int) WriteBehindOption {
	return func(o *WriteBehindOptions) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// WithRetryBaseDelay 设置线性退避的基础间隔。
// 如果 d <= 0，将忽略此设置并使用默认值。
func WithRetryBaseDelay(d time.Duration) WriteBehindOption {
	return func(o *WriteBehindOptions) {
		if d > 0 {
			o.RetryBaseDelay = d
		}
	}
}

// WithWriteBehindLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithWriteBehindLogger(logger *slog.Logger) WriteBehindOption {
	return func(o *WriteBehindOptions) {
		o.Logger = logger
	}
}

// =============================================================================
// Write-Behind 策略
// =============================================================================

// queueItem 是待持久化的单条写入。
type queueItem struct {
	key   string
	value []byte
}

// WriteBehind 实现写回模式：写入先同步进缓存（缓存始终反映最新写入），
// 随后入队，由延迟触发的排空流程异步持久化到记录系统。
//
// 排空语义：
//   - 队列严格 FIFO，逐条持久化
//   - 单条失败时先线性退避重试（默认 3 次尝试），仍失败则放回队首
//     并终止本轮——后续数据不会越过失败数据，持久化顺序得到保证，
//     代价是持续失败的数据会阻塞其后的队列（显式的顺序/背压取舍）
//   - 失败后数据留在队列中，等待下一次 Set 触发新一轮排空
//
// 排空调度做了合并：一个延迟窗口内的多次 Set 只安排一次排空，
// 不会产生冗余的并发排空。
type WriteBehind struct {
	cache   *xcache.Cache
	write   WriteFunc
	options *WriteBehindOptions

	mu        sync.Mutex
	queue     []queueItem
	timer     *time.Timer
	scheduled bool

	// drainMu 串行化排空轮次，定时触发与显式 Flush 不会交错执行。
	drainMu sync.Mutex

	closed atomic.Bool
}

// NewWriteBehind 创建写回策略实例。
// write 负责向记录系统持久化单条数据，由调用方提供。
func NewWriteBehind(cache *xcache.Cache, write WriteFunc, opts ...WriteBehindOption) (*WriteBehind, error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	if write == nil {
		return nil, ErrNilWrite
	}

	options := defaultWriteBehindOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &WriteBehind{
		cache:   cache,
		write:   write,
		options: options,
	}, nil
}

// Set 写入缓存并将数据入队等待异步持久化。ttl <= 0 表示永不过期。
// 返回值反映缓存写入结果；入队总是成功（队列无上界）。
// 关闭后调用返回 false，不再写入缓存也不再入队。
func (w *WriteBehind) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if w.closed.Load() {
		return false
	}

	ok := w.cache.SetWithTTL(ctx, key, value, ttl)

	w.mu.Lock()
	w.queue = append(w.queue, queueItem{key: key, value: append([]byte(nil), value...)})
	w.scheduleLocked()
	w.mu.Unlock()

	return ok
}

// scheduleLocked 安排一次延迟排空。调用方必须持有 w.mu。
// 已有排空在等待时不重复安排，多次写入合并到同一轮。
func (w *WriteBehind) scheduleLocked() {
	if w.scheduled || w.closed.Load() {
		return
	}
	w.scheduled = true
	w.timer = time.AfterFunc(w.options.DrainDelay, func() {
		w.drain(context.Background())
	})
}

// Flush 同步排空队列，返回时队列已清空或因持久化失败而终止。
// 用于需要确定性落盘的场景（如测试、优雅下线前）。
func (w *WriteBehind) Flush(ctx context.Context) {
	w.drain(ctx)
}

// Pending 返回当前待持久化的条目数。
func (w *WriteBehind) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close 关闭写回策略：取消待触发的排空，并尽力完成一次最终排空。
// 重复调用返回 ErrClosed。不关闭底层缓存。
func (w *WriteBehind) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.scheduled = false
	w.mu.Unlock()

	w.drain(context.Background())
	return nil
}

// drain 执行一轮排空：从队首逐条持久化，直到队列清空或遇到
// 重试耗尽的失败。失败数据放回队首、终止本轮并记录日志。
func (w *WriteBehind) drain(ctx context.Context) {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()

	// 本轮开始后到来的写入会重新安排下一轮
	w.mu.Lock()
	w.scheduled = false
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		item := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if err := w.writeWithRetry(ctx, item); err != nil {
			// 放回队首：失败数据优先于其后的一切重试，保证持久化顺序
			w.mu.Lock()
			w.queue = append([]queueItem{item}, w.queue...)
			pending := len(w.queue)
			w.mu.Unlock()

			w.logWarn("xstrategy: write-behind durable write failed, drain halted",
				"key", item.key, "pending", pending, "error", err)
			return
		}
	}
}

// writeWithRetry 持久化单条数据，线性退避重试。
// 第 n 次重试前等待 n * RetryBaseDelay。
func (w *WriteBehind) writeWithRetry(ctx context.Context, item queueItem) error {
	base := w.options.RetryBaseDelay
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(w.options.MaxAttempts)),
		retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
			// retry-go v5 的 n 从 1 开始
			return base * time.Duration(n)
		}),
		retry.LastErrorOnly(true),
	).Do(func() error {
		return w.write(ctx, item.key, item.value)
	})
}

// logWarn 记录告警日志（如果配置了 Logger）。
func (w *WriteBehind) logWarn(msg string, args ...any) {
	if w.options.Logger != nil {
		w.options.Logger.Warn(msg, args...)
	}
}
