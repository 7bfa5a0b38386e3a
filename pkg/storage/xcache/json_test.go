package xcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestGetJSON_SetJSON_RoundTrip(t *testing.T) {
	c := newMemoryCache(t, Config{})
	ctx := context.Background()

	in := testUser{ID: 42, Name: "alice"}
	require.True(t, SetJSON(ctx, c, "user:42", in, time.Minute))

	out, ok := GetJSON[testUser](ctx, c, "user:42")
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestGetJSON_Missing_ReturnsZero(t *testing.T) {
	c := newMemoryCache(t, Config{})

	out, ok := GetJSON[testUser](context.Background(), c, "missing")
	assert.False(t, ok)
	assert.Zero(t, out)
}

func TestGetJSON_CorruptPayload_TreatedAsMiss(t *testing.T) {
	c := newMemoryCache(t, Config{}, WithLogger(nil))
	ctx := context.Background()

	// 存量数据不是合法 JSON
	require.True(t, c.Set(ctx, "user:42", []byte("{corrupt")))

	out, ok := GetJSON[testUser](ctx, c, "user:42")
	assert.False(t, ok)
	assert.Zero(t, out)

	// 字节层面的命中已计入统计，解码失败不回滚
	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestGetJSON_TypeMismatch_TreatedAsMiss(t *testing.T) {
	c := newMemoryCache(t, Config{}, WithLogger(nil))
	ctx := context.Background()

	require.True(t, SetJSON(ctx, c, "key", "just a string", time.Minute))

	_, ok := GetJSON[testUser](ctx, c, "key")
	assert.False(t, ok)
}

func TestSetJSON_UnencodableValue_ReturnsFalse(t *testing.T) {
	c := newMemoryCache(t, Config{}, WithLogger(nil))
	ctx := context.Background()

	// channel 无法 JSON 编码
	ok := SetJSON(ctx, c, "key", make(chan int), time.Minute)
	assert.False(t, ok)

	// 编码失败不写入任何数据
	assert.False(t, c.Has(ctx, "key"))
}
