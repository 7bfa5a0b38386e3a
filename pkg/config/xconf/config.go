package xconf

import "github.com/knadh/koanf/v2"

// Format 定义配置来源的序列化格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式，适合手写配置文件与 K8s ConfigMap。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式，适合程序生成的配置。
	FormatJSON Format = "json"
)

// Config 定义配置访问接口。
// 接口只覆盖加载与反序列化；路径查询、类型取值等基础操作
// 请直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将指定路径下的配置反序列化到目标结构体。
	// path 为空字符串时反序列化整个配置树。
	// 字段映射使用 koanf 标签（可通过 WithTag 修改）。
	Unmarshal(path string, target any) error

	// MustUnmarshal 与 Unmarshal 相同，但失败时 panic。
	// 适用于启动阶段加载必要配置的 fail-fast 场景。
	MustUnmarshal(path string, target any)

	// Reload 重新读取并解析配置文件，并发安全。
	// 仅对从文件创建的实例有效；从字节数据创建的实例
	// 调用将返回错误。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建的实例返回空串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
