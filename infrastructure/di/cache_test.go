package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	v := c.Version("recipes")
	assert.True(t, c.SetIfVersion(ctx, "k", "value", 60, v, "recipes"))

	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestInMemoryCache_InvalidateTags(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	c.SetIfVersion(ctx, "recipes-list", 1, 60, c.Version("recipes", "units"), "recipes", "units")
	c.SetIfVersion(ctx, "pairings-list", 2, 60, c.Version("pairings"), "pairings")

	c.InvalidateTags(ctx, "units")

	_, ok := c.Get(ctx, "recipes-list")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "pairings-list")
	assert.True(t, ok, "unrelated tags survive")
}

func TestInMemoryCache_StaleWriteIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	before := c.Version("recipes")
	c.InvalidateTags(ctx, "recipes")

	assert.False(t, c.SetIfVersion(ctx, "k", "stale", 60, before, "recipes"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	c.SetIfVersion(ctx, "k", "v", 30, 0, "recipes")
	now = now.Add(31 * time.Second)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.cleanupExpired()
	assert.Empty(t, c.items)
	assert.Empty(t, c.byTag["recipes"])
}
