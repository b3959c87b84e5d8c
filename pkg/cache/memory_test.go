package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string
	Count int
	Tags  []int
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", entry{Name: "a", Count: 2, Tags: []int{1, 2}}, time.Minute))

	var got entry
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, entry{Name: "a", Count: 2, Tags: []int{1, 2}}, got)

	var missing entry
	assert.ErrorIs(t, mc.Get(ctx, "nope", &missing), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clock.now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.t = clock.t.Add(2 * time.Minute)
	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	ok, _ = mc.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.now))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	clock.t = clock.t.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "x", 0))
	require.NoError(t, mc.Delete(ctx, "a", "missing"))
	var s string
	assert.ErrorIs(t, mc.Get(ctx, "a", &s), ErrCacheMiss)
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestLayeredCachePromotesL2Hits(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2)
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", entry{Name: "from-l2"}, time.Hour))

	var got entry
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "from-l2", got.Name)

	// L1 now serves the value even after L2 loses it.
	require.NoError(t, l2.Delete(ctx, "k"))
	got = entry{}
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "from-l2", got.Name)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "profile:lotto649", Key("profile", "lotto649"))
}
