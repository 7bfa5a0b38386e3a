// Package xhttpcache 提供基于缓存门面的 HTTP 响应缓存中间件。
//
// 中间件捕获下游 handler 的 GET 响应（状态码、响应头、响应体），
// JSON 编码后写入 xcache.Cache；后续相同请求直接回放缓存结果，
// 通过 "X-Cache: HIT/MISS" 头标识命中情况。
//
// 基本用法：
//
//	mw := xhttpcache.Middleware(cache, time.Minute)
//	http.Handle("/api/", mw(apiHandler))
//
// 仅缓存 2xx 响应，响应体超过上限（默认 1MB）的不缓存；
// 非 GET 请求一律透传。缓存故障退化为直通转发。
package xhttpcache
