package xstore

import "errors"

// =============================================================================
// 通用错误
// =============================================================================

var (
	// ErrNotFound 表示 key 不存在或已过期。
	// 真实缺失与过期缺失对调用方不可区分，统一视为未命中。
	ErrNotFound = errors.New("xstore: key not found")

	// ErrClosed 表示存储已关闭。
	ErrClosed = errors.New("xstore: store closed")

	// ErrEmptyKey 表示传入的 key 为空字符串。
	// 空字符串 key 在 Redis 中合法但几乎总是使用错误，应在入口处 fail-fast。
	ErrEmptyKey = errors.New("xstore: empty key")

	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xstore: nil client")
)
