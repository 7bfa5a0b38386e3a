package xstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// MemoryStore 实现
// =============================================================================

// memEntry 是进程内存储的单条缓存数据。
type memEntry struct {
	value []byte

	// expiresAt 为绝对过期时间，零值表示永不过期。
	expiresAt time.Time
}

// expired 判断条目在 now 时刻是否已过期。
func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore 是进程内的 Store 实现。
// 基于 map + RWMutex，无网络 I/O，除入参错误和 ErrClosed 外不会失败。
//
// 过期采用惰性清理：仅在 Get/Has 访问到过期条目时删除，无后台清扫。
// 因此 Len 可能短暂包含已过期但尚未被访问的条目。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	closed  atomic.Bool
}

// 确保 MemoryStore 实现 Store 接口。
var _ Store = (*MemoryStore)(nil)

// NewMemory 创建进程内存储实例。
func NewMemory() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
	}
}

// Get 读取 key 对应的值。
// 过期条目在本次访问中被惰性删除并返回 ErrNotFound。
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if e.expired(time.Now()) {
		s.evictExpired(key)
		return nil, ErrNotFound
	}
	return e.value, nil
}

// Set 写入 key。ttl <= 0 表示永不过期。
// 内部保存 value 的副本，调用方后续修改切片不影响缓存数据。
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}

	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete 删除 key。
// 返回值表示删除前是否存在有效（未过期）数据。
func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	return ok && !e.expired(time.Now()), nil
}

// Clear 清空全部 key。
func (s *MemoryStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	s.entries = make(map[string]memEntry)
	s.mu.Unlock()
	return nil
}

// Has 判断 key 是否存在且未过期，不取出值。
func (s *MemoryStore) Has(ctx context.Context, key string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if e.expired(time.Now()) {
		s.evictExpired(key)
		return false, nil
	}
	return true, nil
}

// Ping 进程内存储始终可用。
func (s *MemoryStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Close 关闭存储并释放数据。重复调用返回 ErrClosed。
func (s *MemoryStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return nil
}

// Len 返回当前条目数（可能包含尚未被访问清理的过期条目）。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictExpired 删除已过期的 key。
// 加写锁后二次校验，避免与并发 Set 的新数据竞争。
func (s *MemoryStore) evictExpired(key string) {
	s.mu.Lock()
	if cur, ok := s.entries[key]; ok && cur.expired(time.Now()) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}
