// Package xconf 提供统一的配置加载和解析功能，基于 koanf 实现。
//
// # 设计理念
//
// xconf 定位为最小化配置加载器，负责文件/字节数据的加载、
// 反序列化和手动重载。不负责配置治理（必选字段校验、默认值注入、
// 环境变量覆盖），这些能力由使用方按需实现——例如缓存配置的
// 缺省值由 xcache 包在反序列化后自行填充。
//
// 设计模式与 xcache 保持一致：
//   - 工厂函数：New, NewFromBytes
//   - Client() 暴露底层 koanf 实例
//   - 增值功能：并发安全的 Reload、类型安全的 Unmarshal
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// 所有方法都是并发安全的。Reload 先在新实例上完成解析，
// 成功后才在锁保护下替换，解析失败不会破坏已有配置。
// Client() 返回的实例在 Reload 后指向旧配置（快照语义），
// 需要最新数据时重新调用 Client()。
//
// # Unmarshal
//
// Unmarshal 使用 mapstructure 反序列化，默认允许弱类型转换
// （例如字符串 "8080" 可自动转为 int 8080）。
// 如需严格校验，建议在 Unmarshal 后自行验证。
package xconf
