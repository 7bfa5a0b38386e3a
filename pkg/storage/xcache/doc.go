// Package xcache 提供统一的缓存门面（Facade），屏蔽后端差异并统计命中情况。
//
// # 设计理念
//
// Cache 是显式构造、显式传递的实例，不提供包级全局单例：
// 多实例相互隔离，便于测试与多租户场景。
//
// 后端选择在 New 时一次性完成：优先尝试远程后端（Redis，建连 + 存活探测），
// 失败时回退到进程内后端。此后后端不再切换——后续的远程故障按操作降级
// （Get 降级为未命中，写类操作降级为 false），不触发重新选择。
//
// # 错误边界
//
// 纯后端相关的故障在本层被完全吸收：调用方永远不会因缓存故障收到错误，
// 缓存表现为"如同为空"。统计计数反映降级后的结果。
//
// # 核心能力
//
//   - Get/Set/SetWithTTL/Delete/Clear/Has：统一异步契约，带统计
//   - DeleteByPattern：模式批量失效（仅可枚举后端）
//   - Stats/ResetStats/HealthCheck：计数快照、命中率、健康状态
//   - StartWarming/StopWarming：按配置 key 集合周期预热（robfig/cron 调度）
//   - StatsCollector：Prometheus 指标导出
//   - GetJSON/SetJSON：泛型 JSON 序列化辅助，解码失败视为未命中
//
// # 统计口径
//
// hits + misses 恒等于 Get 调用次数；Has 不计入统计（存在性检查不是读请求）。
// 命中率以 "NN.NN%" 字符串呈现，无请求时为 "0.00%"。
package xcache
