package xstrategy

import "errors"

// =============================================================================
// 通用错误
// =============================================================================

var (
	// ErrNilCache 表示传入的缓存实例为 nil。
	ErrNilCache = errors.New("xstrategy: nil cache")

	// ErrNilFetch 表示回源函数为 nil。
	ErrNilFetch = errors.New("xstrategy: nil fetch function")

	// ErrNilWrite 表示写回函数为 nil。
	ErrNilWrite = errors.New("xstrategy: nil write function")

	// ErrClosed 表示写回策略已关闭。
	ErrClosed = errors.New("xstrategy: write-behind closed")
)
