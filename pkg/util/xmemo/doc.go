// Package xmemo 提供基于缓存门面的函数记忆化（memoization）装饰器。
//
// 通过泛型 Wrap 将任意 func(ctx, Req) (Resp, error) 包装为带缓存的
// 版本：结果 JSON 编码后写入 xcache.Cache，命中时跳过真实调用。
//
// 基本用法：
//
//	lookup := xmemo.Wrap(cache, "user", fetchUser, 5*time.Minute)
//	u, err := lookup(ctx, userID)
//
// 设计取舍：
//   - 失败的调用不缓存，错误原样传播；
//   - 缓存读写均为尽力而为，缓存故障退化为直通调用；
//   - 不做 single-flight 去重，同 key 并发调用各自执行。
package xmemo
