package cache

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type MemoryProvider struct {
	cache *lru.Cache[string, item]
	now   func() time.Time
}

type item struct {
	value     string
	expiresAt time.Time
}

func (i item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

const defaultMemoryCacheSize = 10_000

func NewMemoryProvider(size int) (*MemoryProvider, error) {
	if size <= 0 {
		size = defaultMemoryCacheSize
	}
	c, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{cache: c, now: time.Now}, nil
}

// SetClock replaces the time source used for expiry.
func (m *MemoryProvider) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

func (m *MemoryProvider) Get(ctx context.Context, key string) (string, error) {
	_ = ctx
	cached, exists := m.cache.Get(key)
	if !exists {
		return "", ErrNotFound
	}

	if cached.expired(m.now()) {
		m.cache.Remove(key)
		return "", ErrNotFound
	}

	return cached.value, nil
}

func (m *MemoryProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	_ = ctx
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	m.cache.Add(key, item{
		value:     value,
		expiresAt: expiresAt,
	})
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.cache.Remove(key)
	return nil
}

// Sweep evicts every expired entry and returns how many were removed.
func (m *MemoryProvider) Sweep() int {
	now := m.now()
	removed := 0
	for _, key := range m.cache.Keys() {
		cached, ok := m.cache.Peek(key)
		if ok && cached.expired(now) {
			m.cache.Remove(key)
			removed++
		}
	}
	return removed
}

func (m *MemoryProvider) Len() int {
	return m.cache.Len()
}

func (m *MemoryProvider) Ping(context.Context) error {
	return nil
}

func (m *MemoryProvider) Name() string {
	return "memory"
}

func (m *MemoryProvider) Close() error {
	return nil
}

var ErrNotFound = errors.New("key not found")
