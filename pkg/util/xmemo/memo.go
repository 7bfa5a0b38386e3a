package xmemo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// 配置选项
// =============================================================================

// KeyFunc 定义按请求参数生成缓存 key 的函数类型。
type KeyFunc[Req any] func(req Req) string

// Option 定义配置记忆化包装的函数类型。
type Option[Req any] func(*options[Req])

type options[Req any] struct {
	keyFn  KeyFunc[Req]
	logger *slog.Logger
}

func defaultMemoOptions[Req any]() *options[Req] {
	return &options[Req]{
		logger: slog.Default(),
	}
}

// WithKeyFunc 自定义缓存 key 的生成方式，替代默认的
// "name:JSON(req)" 形式。
func WithKeyFunc[Req any](fn KeyFunc[Req]) Option[Req] {
	return func(o *options[Req]) {
		if fn != nil {
			o.keyFn = fn
		}
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger[Req any](logger *slog.Logger) Option[Req] {
	return func(o *options[Req]) {
		o.logger = logger
	}
}

// =============================================================================
// 记忆化包装
// =============================================================================

// Wrap 将函数 fn 包装为带缓存的版本：命中时直接返回缓存结果，
// 未命中时调用 fn 并以 ttl 缓存其成功结果。ttl <= 0 表示永不过期。
//
// 缓存 key 默认为 "name:JSON(req)"，可通过 WithKeyFunc 替换。
// 结果经 JSON 编码存入缓存；解码失败视为未命中（重新调用 fn），
// 编码失败只跳过缓存写入，结果照常返回。
//
// fn 的错误原样传播且不缓存——失败的调用不会污染缓存。
//
// 明确不提供 single-flight 保证：同 key 的并发调用在首个完成前
// 各自独立执行 fn。需要去重的场景应由调用方自行加锁。
//
// cache 和 fn 必须非 nil，否则 panic（包装发生在初始化阶段，
// 配置错误应当 fail-fast 而非运行期静默）。
func Wrap[Req any, Resp any](
	cache *xcache.Cache,
	name string,
	fn func(ctx context.Context, req Req) (Resp, error),
	ttl time.Duration,
	opts ...Option[Req],
) func(ctx context.Context, req Req) (Resp, error) {
	if cache == nil {
		panic("xmemo: nil cache")
	}
	if fn == nil {
		panic("xmemo: nil fn")
	}

	options := defaultMemoOptions[Req]()
	for _, opt := range opts {
		opt(options)
	}

	return func(ctx context.Context, req Req) (Resp, error) {
		key, ok := buildKey(name, req, options)
		if !ok {
			// key 生成失败时退化为直通调用，不缓存
			return fn(ctx, req)
		}

		if resp, hit := xcache.GetJSON[Resp](ctx, cache, key); hit {
			return resp, nil
		}

		resp, err := fn(ctx, req)
		if err != nil {
			return resp, err
		}

		xcache.SetJSON(ctx, cache, key, resp, ttl)
		return resp, nil
	}
}

// buildKey 生成缓存 key。默认形式为 "name:JSON(req)"。
func buildKey[Req any](name string, req Req, options *options[Req]) (string, bool) {
	if options.keyFn != nil {
		return options.keyFn(req), true
	}

	data, err := json.Marshal(req)
	if err != nil {
		if options.logger != nil {
			options.logger.Warn("xmemo: marshal request failed, bypassing cache",
				"name", name, "error", err)
		}
		return "", false
	}
	return name + ":" + string(data), true
}
