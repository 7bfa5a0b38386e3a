// Package xstore 定义缓存存储后端的统一能力契约，并提供两种实现。
//
// # 设计理念
//
// Store 是一个显式接口而非结构化鸭子类型：五个基础操作（Get/Set/Delete/Clear/Has）
// 加上生命周期方法（Ping/Close），由进程内实现和远程实现分别满足。
// 可枚举 key 的后端额外实现 Enumerator 扩展接口，上层按需类型断言。
//
// # 两种实现
//
//   - MemoryStore：map + RWMutex，惰性过期清理，无网络 I/O，除入参错误外不会失败
//   - RedisStore：包装 go-redis UniversalClient，key 带命名空间前缀，
//     Clear/Keys 只作用于前缀之内；可选 gobreaker 熔断保护
//
// # 错误边界
//
// 本包不做降级：远程操作的网络/协议错误原样向上抛出，
// 由上层 Facade（xcache 包）统一转换为"未命中 / false"并记录日志。
// key 不存在统一返回 ErrNotFound，真实缺失与 TTL 过期不可区分。
package xstore
