package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestMemoryProviderExpiry(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(8)
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	ctx := context.Background()
	if err := provider.Set(ctx, "short", "a", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := provider.Set(ctx, "forever", "b", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got, err := provider.Get(ctx, "short"); err != nil || got != "a" {
		t.Fatalf("Get(short) = %q, %v", got, err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := provider.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if got, err := provider.Get(ctx, "forever"); err != nil || got != "b" {
		t.Fatalf("Get(forever) = %q, %v", got, err)
	}
}

func TestMemoryProviderSweep(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider(8)
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	ctx := context.Background()
	_ = provider.Set(ctx, "a", "1", time.Minute)
	_ = provider.Set(ctx, "b", "2", time.Hour)
	_ = provider.Set(ctx, "c", "3", 0)

	now = now.Add(10 * time.Minute)

	if removed := provider.Sweep(); removed != 1 {
		t.Fatalf("Sweep() removed %d, want 1", removed)
	}
	if provider.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", provider.Len())
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default", provider: ""},
		{name: "memory", provider: "memory"},
		{name: "unsupported", provider: "memcached", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider, err := NewProvider(Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			_ = provider.Close()
		})
	}
}

func TestRedisProvider(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	provider, err := NewProvider(Config{Provider: "redis", RedisConnectionString: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })

	ctx := context.Background()
	key := PageKey("abc")

	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := provider.Set(ctx, key, "payload", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := provider.Get(ctx, key); err != nil || got != "payload" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	if ttl := mr.TTL("trackpage:page:abc"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}

	if err := provider.Set(ctx, key, "saved", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := mr.TTL("trackpage:page:abc"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}

	if err := provider.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := provider.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisProviderBareAddress(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	provider, err := NewRedisProvider(mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisProvider() error = %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })

	if provider.Name() != "redis" {
		t.Fatalf("unexpected name %q", provider.Name())
	}
	if err := provider.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	mr.Close()
	if err := provider.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail once redis is gone")
	}
}

func TestNewRedisProviderRejectsEmptyConnectionString(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisProvider("  "); err == nil {
		t.Fatalf("expected error for empty connection string")
	}
}
