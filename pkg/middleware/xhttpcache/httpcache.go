package xhttpcache

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/omeyang/cachekit/pkg/storage/xcache"
)

// =============================================================================
// 缓存条目
// =============================================================================

// Entry 是缓存的 HTTP 响应快照。
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	CachedAt time.Time   `json:"cached_at"`
}

// =============================================================================
// 配置选项
// =============================================================================

// defaultMaxBodySize 是可缓存响应体的默认上限。
const defaultMaxBodySize = 1 << 20 // 1MB

// KeyFunc 定义按请求生成缓存 key 的函数类型。
type KeyFunc func(r *http.Request) string

// Option 定义配置中间件的函数类型。
type Option func(*options)

type options struct {
	keyFn       KeyFunc
	logger      *slog.Logger
	maxBodySize int64
}

func defaultHTTPCacheOptions() *options {
	return &options{
		keyFn:       defaultKey,
		logger:      slog.Default(),
		maxBodySize: defaultMaxBodySize,
	}
}

// WithKeyFunc 自定义缓存 key 的生成方式，替代默认的
// "method:RequestURI" 形式。传入 nil 保持默认。
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.keyFn = fn
		}
	}
}

// WithLogger 设置自定义 Logger。传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxBodySize 设置可缓存响应体的大小上限，超限的响应照常
// 返回但不写入缓存。size <= 0 保持默认值 1MB。
func WithMaxBodySize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.maxBodySize = size
		}
	}
}

func defaultKey(r *http.Request) string {
	return r.Method + ":" + r.URL.RequestURI()
}

// =============================================================================
// 中间件
// =============================================================================

// Middleware 返回一个缓存 GET 响应的 http.Handler 中间件。
//
// 命中时直接回放缓存的状态码、响应头与响应体，并带 "X-Cache: HIT"
// 头，不再调用下游 handler；未命中时透传请求，捕获响应，仅当
// 状态码在 [200, 300) 且响应体未超限时以 ttl 写入缓存，响应带
// "X-Cache: MISS" 头。ttl <= 0 表示使用缓存门面的默认 TTL。
//
// 非 GET 请求一律透传且不缓存。缓存读写均为尽力而为，缓存故障
// 退化为直通转发。
//
// cache 必须非 nil，否则 panic。
func Middleware(cache *xcache.Cache, ttl time.Duration, opts ...Option) func(http.Handler) http.Handler {
	if cache == nil {
		panic("xhttpcache: nil cache")
	}

	o := defaultHTTPCacheOptions()
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := o.keyFn(r)
			if entry, hit := xcache.GetJSON[Entry](r.Context(), cache, key); hit {
				writeEntry(w, &entry)
				return
			}

			rec := newRecorder(w)
			rec.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if !shouldStore(rec, o.maxBodySize) {
				return
			}

			entry := Entry{
				Status:   rec.status,
				Header:   cloneHeader(rec.Header()),
				Body:     rec.body.Bytes(),
				CachedAt: time.Now(),
			}
			if !xcache.SetJSON(r.Context(), cache, key, entry, ttl) && o.logger != nil {
				o.logger.Warn("xhttpcache: store response failed", "key", key)
			}
		})
	}
}

// shouldStore 判断响应是否应写入缓存：仅缓存 2xx 且体积未超限的响应。
func shouldStore(rec *recorder, maxBodySize int64) bool {
	if rec.status < 200 || rec.status >= 300 {
		return false
	}
	return int64(rec.body.Len()) <= maxBodySize
}

// writeEntry 将缓存条目回放到响应。
func writeEntry(w http.ResponseWriter, entry *Entry) {
	for key, values := range entry.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
}

// cloneHeader 复制响应头，剔除回放时由 writeEntry 重新设置的 X-Cache。
func cloneHeader(h http.Header) http.Header {
	cloned := h.Clone()
	cloned.Del("X-Cache")
	return cloned
}

// =============================================================================
// 响应捕获
// =============================================================================

// recorder 包装 http.ResponseWriter，在透传响应的同时捕获
// 状态码与响应体以便写入缓存。
type recorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

func (rec *recorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
		rec.ResponseWriter.WriteHeader(code)
	}
}

func (rec *recorder) Write(b []byte) (int, error) {
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

func (rec *recorder) Flush() {
	if flusher, ok := rec.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
