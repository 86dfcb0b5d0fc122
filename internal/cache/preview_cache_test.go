package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

func exercise(t *testing.T, c PreviewCache) {
	ctx := context.Background()
	p := &Preview{Token: "tok-" + t.Name(), Category: "sales", Questions: []quiz.Question{{Ordinal: 1, Type: quiz.TypeChoice}}}
	require.NoError(t, c.Set(ctx, p))

	got, err := c.Get(ctx, p.Token)
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Category)
	require.Len(t, got.Questions, 1)

	require.NoError(t, c.Delete(ctx, p.Token))
	_, err = c.Get(ctx, p.Token)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryPreviewCache(t *testing.T) {
	exercise(t, NewMemoryPreviewCache(time.Minute))
}

func TestMemoryPreviewCache_Expiry(t *testing.T) {
	c := NewMemoryPreviewCache(time.Minute).(*memoryCache)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(context.Background(), &Preview{Token: "t"}))

	now = now.Add(59 * time.Second)
	_, err := c.Get(context.Background(), "t")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get(context.Background(), "t")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisPreviewCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	exercise(t, NewPreviewCache(client, time.Minute))
}
