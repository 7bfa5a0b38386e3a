package xcache

import "errors"

// =============================================================================
// Facade 错误
// =============================================================================

var (
	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xcache: cache closed")

	// ErrPatternUnsupported 表示当前后端不支持按模式批量失效。
	// 进程内后端不提供 key 枚举能力，模式失效仅对远程后端有意义。
	ErrPatternUnsupported = errors.New("xcache: pattern invalidation unsupported by backend")
)

// =============================================================================
// 预热错误
// =============================================================================

var (
	// ErrWarmingDisabled 表示配置未启用预热。
	ErrWarmingDisabled = errors.New("xcache: warming disabled by config")

	// ErrWarmingStarted 表示预热调度已在运行。
	ErrWarmingStarted = errors.New("xcache: warming already started")

	// ErrNilWarmFunc 表示预热取回函数为 nil。
	ErrNilWarmFunc = errors.New("xcache: nil warm function")
)
