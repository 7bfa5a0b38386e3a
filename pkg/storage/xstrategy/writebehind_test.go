package xstrategy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter 记录持久化调用，可按 key 注入若干次失败。
type recordingWriter struct {
	mu       sync.Mutex
	writes   []string
	failures map[string]int // key → 剩余失败次数
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{failures: make(map[string]int)}
}

func (r *recordingWriter) failNext(key string, times int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key] = times
}

func (r *recordingWriter) write(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.failures[key]; n > 0 {
		r.failures[key] = n - 1
		return errors.New("sink unavailable")
	}
	r.writes = append(r.writes, key)
	return nil
}

func (r *recordingWriter) written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

func newTestWriteBehind(t *testing.T, w *recordingWriter, opts ...WriteBehindOption) *WriteBehind {
	t.Helper()
	cache := newTestCache(t)

	base := []WriteBehindOption{
		WithDrainDelay(10 * time.Millisecond),
		WithRetryBaseDelay(time.Millisecond),
		WithWriteBehindLogger(nil),
	}
	wb, err := NewWriteBehind(cache, w.write, append(base, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = wb.Close()
	})
	return wb
}

// =============================================================================
// 工厂函数测试
// =============================================================================

func TestNewWriteBehind_NilCache_ReturnsError(t *testing.T) {
	_, err := NewWriteBehind(nil, func(ctx context.Context, key string, value []byte) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrNilCache)
}

func TestNewWriteBehind_NilWrite_ReturnsError(t *testing.T) {
	cache := newTestCache(t)
	_, err := NewWriteBehind(cache, nil)
	assert.ErrorIs(t, err, ErrNilWrite)
}

// =============================================================================
// 基本写回测试
// =============================================================================

func TestWriteBehind_Set_CacheImmediatelyVisible(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w)
	ctx := context.Background()

	require.True(t, wb.Set(ctx, "key", []byte("value"), time.Minute))

	// 缓存写入同步完成，持久化尚未发生也能读到
	got, ok := wb.cache.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestWriteBehind_Flush_DrainsInFIFOOrder(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w)
	ctx := context.Background()

	wb.Set(ctx, "a", []byte("1"), 0)
	wb.Set(ctx, "b", []byte("2"), 0)
	wb.Set(ctx, "c", []byte("3"), 0)

	wb.Flush(ctx)

	assert.Equal(t, []string{"a", "b", "c"}, w.written())
	assert.Zero(t, wb.Pending())
}

func TestWriteBehind_TimerDrain_RunsWithoutFlush(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w)
	ctx := context.Background()

	wb.Set(ctx, "key", []byte("value"), 0)

	assert.Eventually(t, func() bool {
		return wb.Pending() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"key"}, w.written())
}

// =============================================================================
// 失败与重试测试
// =============================================================================

func TestWriteBehind_TransientFailure_RetriedWithinDrain(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w, WithMaxAttempts(3))
	ctx := context.Background()

	// 前两次尝试失败，第三次成功
	w.failNext("key", 2)
	wb.Set(ctx, "key", []byte("value"), 0)

	wb.Flush(ctx)

	assert.Equal(t, []string{"key"}, w.written())
	assert.Zero(t, wb.Pending())
}

func TestWriteBehind_PersistentFailure_HaltsDrainPreservesOrder(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w, WithMaxAttempts(2))
	ctx := context.Background()

	// "a" 重试耗尽后仍失败，"b"、"c" 不得越过它
	w.failNext("a", 10)
	wb.Set(ctx, "a", []byte("1"), 0)
	wb.Set(ctx, "b", []byte("2"), 0)
	wb.Set(ctx, "c", []byte("3"), 0)

	wb.Flush(ctx)

	assert.Empty(t, w.written())
	assert.Equal(t, 3, wb.Pending())

	// 故障恢复后的下一轮按原顺序排空
	w.failNext("a", 0)
	wb.Flush(ctx)

	assert.Equal(t, []string{"a", "b", "c"}, w.written())
	assert.Zero(t, wb.Pending())
}

func TestWriteBehind_FailureRecovery_ResumesFromFront(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w, WithMaxAttempts(1))
	ctx := context.Background()

	w.failNext("a", 1)
	wb.Set(ctx, "a", []byte("1"), 0)
	wb.Set(ctx, "b", []byte("2"), 0)

	// 第一轮在 a 上失败终止
	wb.Flush(ctx)
	assert.Equal(t, 2, wb.Pending())

	// 第二轮从 a 恢复，严格先于 b
	wb.Flush(ctx)
	assert.Equal(t, []string{"a", "b"}, w.written())
}

// =============================================================================
// 生命周期测试
// =============================================================================

func TestWriteBehind_Close_FinalDrain(t *testing.T) {
	w := newRecordingWriter()
	cache := newTestCache(t)

	wb, err := NewWriteBehind(cache, w.write,
		WithDrainDelay(time.Hour), // 定时器不会触发，完全依赖 Close 排空
		WithWriteBehindLogger(nil))
	require.NoError(t, err)

	ctx := context.Background()
	wb.Set(ctx, "a", []byte("1"), 0)
	wb.Set(ctx, "b", []byte("2"), 0)

	require.NoError(t, wb.Close())

	assert.Equal(t, []string{"a", "b"}, w.written())
	assert.Zero(t, wb.Pending())
}

func TestWriteBehind_Close_SecondCall_ReturnsErrClosed(t *testing.T) {
	w := newRecordingWriter()
	cache := newTestCache(t)
	wb, err := NewWriteBehind(cache, w.write, WithWriteBehindLogger(nil))
	require.NoError(t, err)

	require.NoError(t, wb.Close())
	assert.ErrorIs(t, wb.Close(), ErrClosed)
}

func TestWriteBehind_SetAfterClose_ReturnsFalse(t *testing.T) {
	w := newRecordingWriter()
	cache := newTestCache(t)
	wb, err := NewWriteBehind(cache, w.write, WithWriteBehindLogger(nil))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	ctx := context.Background()
	assert.False(t, wb.Set(ctx, "key", []byte("value"), 0))

	// 关闭后既不入队也不写缓存
	assert.Zero(t, wb.Pending())
	assert.False(t, cache.Has(ctx, "key"))
}

// =============================================================================
// 调度合并测试
// =============================================================================

func TestWriteBehind_BurstWrites_SingleDrainCycle(t *testing.T) {
	w := newRecordingWriter()
	wb := newTestWriteBehind(t, w, WithDrainDelay(50*time.Millisecond))
	ctx := context.Background()

	// 一个延迟窗口内的多次写入合并为一轮排空
	for i := 0; i < 10; i++ {
		wb.Set(ctx, "key", []byte("value"), 0)
	}
	assert.Equal(t, 10, wb.Pending())

	assert.Eventually(t, func() bool {
		return wb.Pending() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, w.written(), 10)
}
