package session

import (
	"context"
	"fmt"

	"github.com/gitshopapp/trackpage/internal/cache"
)

type Config struct {
	Provider              string
	RedisConnectionString string
}

// NewStore builds the session store named by cfg.Provider. Redis sessions
// survive restarts and are shared between instances.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore()
	case "redis":
		provider, err := cache.NewRedisProvider(cfg.RedisConnectionString)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		if err := provider.Ping(ctx); err != nil {
			_ = provider.Close() //nolint
			return nil, fmt.Errorf("session store: %w", err)
		}
		return NewCacheStore(provider)
	default:
		return nil, fmt.Errorf("unsupported session store provider: %s", cfg.Provider)
	}
}
