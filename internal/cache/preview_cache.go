package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

// ErrMiss is returned for unknown or expired tokens.
var ErrMiss = errors.New("cache: miss")

// Preview is a generated batch waiting to be saved.
type Preview struct {
	Token      string          `json:"token"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	MidTopic   string          `json:"mid_topic"`
	SourceText string          `json:"source_text"`
	CreatedBy  string          `json:"created_by"`
	Questions  []quiz.Question `json:"questions"`
}

type PreviewCache interface {
	Set(ctx context.Context, p *Preview) error
	Get(ctx context.Context, token string) (*Preview, error)
	Delete(ctx context.Context, token string) error
}

type previewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreviewCache(client *redis.Client, ttl time.Duration) PreviewCache {
	return &previewCache{client: client, ttl: ttl}
}

func (c *previewCache) Set(ctx context.Context, p *Preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "preview:"+p.Token, data, c.ttl).Err()
}

func (c *previewCache) Get(ctx context.Context, token string) (*Preview, error) {
	data, err := c.client.Get(ctx, "preview:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var p Preview
	err = json.Unmarshal([]byte(data), &p)
	return &p, err
}

func (c *previewCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, "preview:"+token).Err()
}

type memoryEntry struct {
	p       Preview
	expires time.Time
}

type memoryCache struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]memoryEntry
}

// NewMemoryPreviewCache keeps previews in process. Expired entries are
// dropped on access.
func NewMemoryPreviewCache(ttl time.Duration) PreviewCache {
	return &memoryCache{ttl: ttl, now: time.Now, m: map[string]memoryEntry{}}
}

func (c *memoryCache) Set(_ context.Context, p *Preview) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[p.Token] = memoryEntry{p: *p, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *memoryCache) Get(_ context.Context, token string) (*Preview, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[token]
	if !ok {
		return nil, ErrMiss
	}
	if !c.now().Before(e.expires) {
		delete(c.m, token)
		return nil, ErrMiss
	}
	p := e.p
	return &p, nil
}

func (c *memoryCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, token)
	return nil
}
