package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExpiredEntryIsMiss(t *testing.T) {
	c := New(time.Hour)
	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	v, ok := c.Get("k")
	assert.False(t, ok)
	assert.Nil(t, v)

	c.mu.Lock()
	_, stillPresent := c.entries["k"]
	c.mu.Unlock()
	assert.False(t, stillPresent, "expired entry must be deleted on read")
}

func TestGetOrSet_FillsOnMiss(t *testing.T) {
	c := New(time.Hour)
	calls := 0
	factory := func(ctx context.Context) (any, error) {
		calls++
		return "computed", nil
	}

	v, err := c.GetOrSet(context.Background(), "k", 0, factory)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	v2, err := c.GetOrSet(context.Background(), "k", 0, factory)
	require.NoError(t, err)
	assert.Equal(t, "computed", v2)
	assert.Equal(t, 1, calls, "factory must not re-run on a hit")
}

func TestFingerprint_DeterministicRegardlessOfKeyOrder(t *testing.T) {
	a := Fingerprint(map[string]any{"MinPrice": 1000, "Query": "노트북"})
	b := Fingerprint(map[string]any{"Query": "노트북", "MinPrice": 1000})
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}

func TestRecommendationKey_ScopesBySessionAndIntent(t *testing.T) {
	k1 := RecommendationKey("VALUE", "sess-1", map[string]any{"query": "키보드"})
	k2 := RecommendationKey("VALUE", "sess-2", map[string]any{"query": "키보드"})
	assert.NotEqual(t, k1, k2, "different sessions must not share a recommendation cache key")
}

func TestClearExpired_RemovesOnlyExpired(t *testing.T) {
	c := New(time.Hour)
	c.Set("fresh", 1, time.Hour)
	c.Set("stale", 2, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	removed := c.ClearExpired()
	assert.Equal(t, 1, removed)
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}
