package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander stores values in memory, ignoring TTLs.
type fakeCommander struct {
	data    map[string][]byte
	lastTTL time.Duration
	getErr  error
	setErr  error
}

func newFakeCommander() *fakeCommander {
	return &fakeCommander{data: map[string][]byte{}}
}

func (f *fakeCommander) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.getErr != nil {
		cmd.SetErr(f.getErr)
		return cmd
	}
	val, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(val))
	return cmd
}

func (f *fakeCommander) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	f.lastTTL = expiration
	switch v := value.(type) {
	case []byte:
		f.data[key] = v
	case string:
		f.data[key] = []byte(v)
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeCommander) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeCommander) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	cache := NewAnalysisCache(f, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "trends:90", payload{Name: "recall", Count: 4}, time.Minute))
	assert.Equal(t, time.Minute, f.lastTTL)
	assert.Contains(t, f.data, "medreg:trends:90")

	var got payload
	hit, err := cache.Get(ctx, "trends:90", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Name: "recall", Count: 4}, got)
}

func TestAnalysisCacheMiss(t *testing.T) {
	t.Parallel()

	cache := NewAnalysisCache(newFakeCommander(), nil)

	var got payload
	hit, err := cache.Get(context.Background(), "absent", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAnalysisCacheCorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	f.data["medreg:bad"] = []byte("{not json")
	cache := NewAnalysisCache(f, nil)

	var got payload
	hit, err := cache.Get(context.Background(), "bad", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotContains(t, f.data, "medreg:bad", "corrupt entry should be evicted")
}

func TestAnalysisCacheDefaultTTL(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	cache := NewAnalysisCache(f, nil, WithDefaultTTL(30*time.Second))

	require.NoError(t, cache.Set(context.Background(), "k", payload{}, 0))
	assert.Equal(t, 30*time.Second, f.lastTTL)
}

func TestAnalysisCachePrefixOption(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	cache := NewAnalysisCache(f, nil, WithPrefix("custom:"))

	require.NoError(t, cache.Set(context.Background(), "k", payload{Name: "x"}, time.Minute))
	assert.Contains(t, f.data, "custom:k")

	raw := f.data["custom:k"]
	var got payload
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "x", got.Name)
}

func TestAnalysisCacheDeleteAndExists(t *testing.T) {
	t.Parallel()

	f := newFakeCommander()
	cache := NewAnalysisCache(f, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", payload{}, time.Minute))

	ok, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "k"))

	ok, err = cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
