package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "default provider", provider: "", wantErr: false},
		{name: "memory provider", provider: "memory", wantErr: false},
		{name: "unsupported provider", provider: "unsupported", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(context.Background(), Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if store == nil {
				t.Fatalf("expected store, got nil")
			}
			if err := store.Close(); err != nil {
				t.Fatalf("expected close without error, got %v", err)
			}
		})
	}
}

func TestNewStoreRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	store, err := NewStore(context.Background(), Config{
		Provider:              "redis",
		RedisConnectionString: "redis://" + mr.Addr(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	store.Set(ctx, "abc", &Data{Subject: "admin", CreatedAt: 10}, time.Minute)

	got, ok := store.Get(ctx, "abc")
	if !ok {
		t.Fatalf("expected session to be found")
	}
	if got.Subject != "admin" || got.CreatedAt != 10 {
		t.Fatalf("unexpected session data: %+v", got)
	}
	if !mr.Exists("trackpage:session:abc") {
		t.Fatalf("expected prefixed key in redis")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get(ctx, "abc"); ok {
		t.Fatalf("expected session to expire")
	}
}

func TestNewStoreRedisInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewStore(context.Background(), Config{Provider: "redis", RedisConnectionString: "://bad"}); err == nil {
		t.Fatalf("expected error for invalid connection string")
	}
}
