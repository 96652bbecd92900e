package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gitshopapp/trackpage/internal/cache"
)

const (
	keyPrefix         = "session:"
	memoryCapacity    = 1_000
	storeCallDeadline = 5 * time.Second
)

// CacheStore keeps admin sessions as JSON in a cache provider, so sessions
// share the memory or redis backend already used for unsaved pages.
type CacheStore struct {
	provider cache.Provider
}

func NewCacheStore(provider cache.Provider) (*CacheStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("session cache provider is required")
	}
	return &CacheStore{provider: provider}, nil
}

// NewMemoryStore returns a process-local store bounded to a fixed number of
// sessions.
func NewMemoryStore() (*CacheStore, error) {
	provider, err := cache.NewMemoryProvider(memoryCapacity)
	if err != nil {
		return nil, err
	}
	return NewCacheStore(provider)
}

func (s *CacheStore) Get(ctx context.Context, key string) (*Data, bool) {
	if key == "" {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, storeCallDeadline)
	defer cancel()

	raw, err := s.provider.Get(ctx, keyPrefix+key)
	if err != nil {
		return nil, false
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, false
	}
	return &data, true
}

// Set stores data for ttl. A non-positive ttl is ignored so sessions never
// become permanent.
func (s *CacheStore) Set(ctx context.Context, key string, data *Data, ttl time.Duration) {
	if key == "" || data == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, storeCallDeadline)
	defer cancel()
	_ = s.provider.Set(ctx, keyPrefix+key, string(raw), ttl)
}

func (s *CacheStore) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, storeCallDeadline)
	defer cancel()
	if err := s.provider.Delete(ctx, keyPrefix+key); err != nil && !errors.Is(err, cache.ErrNotFound) {
		return
	}
}

func (s *CacheStore) Close() error {
	return s.provider.Close()
}
