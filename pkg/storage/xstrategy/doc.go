// Package xstrategy 提供构建在缓存门面之上的经典缓存策略。
//
// 所有策略都是 Facade（xcache.Cache）的纯组合，不绕过门面直接
// 操作存储，因此自动继承门面的统计与降级语义。
//
// # 四种策略
//
//   - Aside：读缓存，未命中时回源并回填（Cache-Aside）。
//     单次调用 fetch 至多执行一次，错误原样传播，无并发去重。
//   - WriteThrough：缓存写入在返回前同步完成；
//     记录系统的写入由外部协作方负责。
//   - WriteBehind：写入先进缓存，再经无上界 FIFO 队列异步持久化。
//     失败条目线性退避重试后放回队首并终止本轮，严格保证持久化顺序。
//   - Invalidator：直接失效 / 模式失效（仅可枚举后端）/ 时间失效（空操作）。
//
// # 错误边界
//
// 调用方提供的函数（FetchFunc、WriteFunc）的错误不会被本包吞掉：
// Aside 原样传播 fetch 错误；WriteBehind 在重试耗尽后记录日志并
// 保留数据于队列。纯缓存侧的故障则沿用门面的降级语义。
package xstrategy
