package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gitshopapp/trackpage/internal/cache"
	"github.com/gitshopapp/trackpage/internal/models"
)

// PageCache keeps generated pages in the volatile cache. Unsaved pages expire
// the configured TTL after creation, however often they are rewritten; saved
// pages are kept until deleted.
type PageCache struct {
	provider   cache.Provider
	unsavedTTL time.Duration
	now        func() time.Time
}

func NewPageCache(provider cache.Provider, unsavedTTL time.Duration) (*PageCache, error) {
	if provider == nil {
		return nil, fmt.Errorf("cache provider is required")
	}
	if unsavedTTL <= 0 {
		return nil, fmt.Errorf("unsaved page ttl must be positive")
	}
	return &PageCache{provider: provider, unsavedTTL: unsavedTTL, now: time.Now}, nil
}

func (c *PageCache) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

func (c *PageCache) Get(ctx context.Context, id string) (*models.StatusPage, error) {
	raw, err := c.provider.Get(ctx, cache.PageKey(id))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached page %s: %w", id, err)
	}

	var page models.StatusPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, fmt.Errorf("failed to decode cached page %s: %w", id, err)
	}
	return &page, nil
}

func (c *PageCache) Put(ctx context.Context, page *models.StatusPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page %s: %w", page.ID, err)
	}

	var ttl time.Duration
	if !page.Saved {
		ttl = c.remainingTTL(page)
		if ttl <= 0 {
			return c.Delete(ctx, page.ID)
		}
	}
	if err := c.provider.Set(ctx, cache.PageKey(page.ID), string(raw), ttl); err != nil {
		return fmt.Errorf("failed to cache page %s: %w", page.ID, err)
	}
	return nil
}

func (c *PageCache) Delete(ctx context.Context, id string) error {
	if err := c.provider.Delete(ctx, cache.PageKey(id)); err != nil {
		return fmt.Errorf("failed to evict page %s: %w", id, err)
	}
	return nil
}

// remainingTTL is what is left of the unsaved lifetime measured from creation.
func (c *PageCache) remainingTTL(page *models.StatusPage) time.Duration {
	if page.CreatedAt.IsZero() {
		return c.unsavedTTL
	}
	return c.unsavedTTL - c.now().Sub(page.CreatedAt)
}
