package xcache

import (
	"fmt"
	"time"

	"github.com/omeyang/cachekit/pkg/config/xconf"
)

// =============================================================================
// 配置结构
// =============================================================================

// Config 定义缓存子系统的配置。
// 在进程启动时构造一次，交给 New 消费，之后不再变更。
//
// 时间字段沿用配置面的整数单位（秒 / 毫秒），避免依赖
// 反序列化层对 duration 字符串的解析能力。
type Config struct {
	// DefaultTTLSeconds 默认过期时间（秒）。
	// 0 使用缺省值 300；负数表示默认写入永不过期。
	DefaultTTLSeconds int `koanf:"default_ttl_seconds"`

	// KeyPrefix 远程后端的 key 命名空间前缀。默认为 "cache:"。
	// 进程内后端独占自己的映射表，不需要前缀。
	KeyPrefix string `koanf:"key_prefix"`

	// Redis 远程后端连接参数。Addr 为空时直接使用进程内后端。
	Redis RedisConfig `koanf:"redis"`

	// Warming 缓存预热配置。
	Warming WarmingConfig `koanf:"warming"`
}

// RedisConfig 定义远程后端的连接参数。
type RedisConfig struct {
	// Addr 形如 "host:port"。为空表示不尝试远程后端。
	Addr string `koanf:"addr"`

	// Password 连接密码，可为空。
	Password string `koanf:"password"`

	// DB 数据库编号。
	DB int `koanf:"db"`

	// DialTimeoutMS 建连超时（毫秒）。缺省为 3000。
	// 初始化时的存活探测也使用此超时。
	DialTimeoutMS int `koanf:"dial_timeout_ms"`

	// ReadTimeoutMS 读超时（毫秒）。缺省为 1000。
	ReadTimeoutMS int `koanf:"read_timeout_ms"`

	// WriteTimeoutMS 写超时（毫秒）。缺省为 1000。
	WriteTimeoutMS int `koanf:"write_timeout_ms"`

	// PoolSize 连接池大小。<= 0 使用 go-redis 默认值。
	PoolSize int `koanf:"pool_size"`
}

// WarmingConfig 定义缓存预热配置。
// 预热只声明 key 集合与周期，数据的取回函数由调用方在
// StartWarming 时提供。
type WarmingConfig struct {
	// Enabled 是否启用预热。
	Enabled bool `koanf:"enabled"`

	// IntervalMS 预热周期（毫秒）。缺省为 300000（5 分钟）。
	// 调度精度为秒级，小于 1000 的值会被提升到 1000。
	IntervalMS int `koanf:"interval_ms"`

	// Keys 需要预热的 key 列表，按声明顺序处理。
	Keys []string `koanf:"keys"`
}

// 配置缺省值。
const (
	defaultTTLSeconds    = 300
	defaultKeyPrefix     = "cache:"
	defaultDialTimeoutMS = 3000
	defaultIOTimeoutMS   = 1000
	defaultWarmingMS     = 300000
)

// DefaultTTL 返回默认过期时间。负数配置映射为 0（永不过期）。
func (c Config) DefaultTTL() time.Duration {
	if c.DefaultTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// withDefaults 补全缺省项，返回副本。
func (c Config) withDefaults() Config {
	if c.DefaultTTLSeconds == 0 {
		c.DefaultTTLSeconds = defaultTTLSeconds
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	if c.Redis.DialTimeoutMS <= 0 {
		c.Redis.DialTimeoutMS = defaultDialTimeoutMS
	}
	if c.Redis.ReadTimeoutMS <= 0 {
		c.Redis.ReadTimeoutMS = defaultIOTimeoutMS
	}
	if c.Redis.WriteTimeoutMS <= 0 {
		c.Redis.WriteTimeoutMS = defaultIOTimeoutMS
	}
	if c.Warming.IntervalMS <= 0 {
		c.Warming.IntervalMS = defaultWarmingMS
	}
	return c
}

// dialTimeout 返回建连/存活探测超时。
func (c RedisConfig) dialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

// =============================================================================
// 配置加载
// =============================================================================

// LoadConfig 从配置文件加载缓存配置。
// 根据扩展名自动识别 YAML/JSON，配置位于文件顶层。
func LoadConfig(path string) (Config, error) {
	conf, err := xconf.New(path)
	if err != nil {
		return Config{}, err
	}
	return unmarshalConfig(conf)
}

// LoadConfigBytes 从字节数据加载缓存配置。
// 适用于 K8s ConfigMap 等场景，需要显式指定格式。
func LoadConfigBytes(data []byte, format xconf.Format) (Config, error) {
	conf, err := xconf.NewFromBytes(data, format)
	if err != nil {
		return Config{}, err
	}
	return unmarshalConfig(conf)
}

func unmarshalConfig(conf xconf.Config) (Config, error) {
	var cfg Config
	if err := conf.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("xcache: load config: %w", err)
	}
	return cfg, nil
}
