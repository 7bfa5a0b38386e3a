// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xmemo: 函数记忆化装饰器，泛型支持、结果经缓存门面存取
//
// 设计原则：
//   - 装饰器不改变被包装函数的签名与错误语义
//   - 缓存故障退化为直通调用，不向调用方扩散
package util
