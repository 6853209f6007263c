package cache

import (
	"context"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_cache "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"
)

type Manager[T any] struct {
	cache      *cache.Cache[T]
	expiration time.Duration
}

func NewManager[T any](expiration time.Duration) *Manager[T] {
	client := gocache.New(expiration, expiration)
	return &Manager[T]{
		cache:      cache.New[T](go_cache.NewGoCache(client)),
		expiration: expiration,
	}
}

func (m *Manager[T]) Set(ctx context.Context, key string, value T) error {
	return m.SetWithExpiration(ctx, key, value, m.expiration)
}

func (m *Manager[T]) SetWithExpiration(ctx context.Context, key string, value T, expir time.Duration) error {
	timeout, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	return m.cache.Set(timeout, key, value, store.WithExpiration(expir))
}

// GetValue reports found=false with a nil error for missing keys.
func (m *Manager[T]) GetValue(ctx context.Context, key string) (value T, found bool, err error) {
	timeout, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	value, err = m.cache.Get(timeout, key)
	const errorMessage = "value not found"
	if err != nil {
		if strings.Contains(err.Error(), errorMessage) {
			return value, false, nil
		}
		return value, false, err
	}
	return value, true, nil
}

func (m *Manager[T]) Delete(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

// ImageCache keeps downloaded image bytes keyed by backend image id.
type ImageCache = Manager[[]byte]

func NewImageCache(expiration time.Duration) *ImageCache {
	return NewManager[[]byte](expiration)
}
