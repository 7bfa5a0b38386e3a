// Package storage 提供缓存存储相关的子包。
//
// 子包列表：
//   - xstore: 存储能力层，Redis 与进程内两种实现
//   - xcache: 缓存门面，后端选择、统计、降级与预热
//   - xstrategy: 缓存策略层，cache-aside / write-through / write-behind / 失效
//
// 设计原则：
//   - 能力层只抛错不降级，门面统一吸收故障
//   - 后端选择在初始化时一次完成，运行期不切换
//   - 策略层只依赖门面，不直接触碰存储内部
package storage
