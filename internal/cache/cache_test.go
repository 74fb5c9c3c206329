package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryProviderGetSetDelete(t *testing.T) {
	provider, err := NewMemoryProvider()
	if err != nil {
		t.Fatalf("new memory provider: %v", err)
	}
	ctx := context.Background()

	if _, err := provider.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := provider.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := provider.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("unexpected get result %q %v", got, err)
	}

	if err := provider.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryProviderExpiry(t *testing.T) {
	provider, err := NewMemoryProvider()
	if err != nil {
		t.Fatalf("new memory provider: %v", err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }
	ctx := context.Background()

	_ = provider.Set(ctx, "short", "1", time.Second)
	_ = provider.Set(ctx, "forever", "2", 0)

	now = now.Add(2 * time.Second)

	if _, err := provider.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}
	if v, err := provider.Get(ctx, "forever"); err != nil || v != "2" {
		t.Fatalf("expected non-expiring key, got %q %v", v, err)
	}
}

func TestMemoryProviderEvictsLeastRecentlyUsed(t *testing.T) {
	provider, err := newMemoryProvider(2)
	if err != nil {
		t.Fatalf("new memory provider: %v", err)
	}
	ctx := context.Background()

	_ = provider.Set(ctx, "a", "1", time.Minute)
	_ = provider.Set(ctx, "b", "2", time.Minute)
	_, _ = provider.Get(ctx, "a")
	_ = provider.Set(ctx, "c", "3", time.Minute)

	if _, err := provider.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if _, err := provider.Get(ctx, "a"); err != nil {
		t.Fatalf("expected a to survive, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("default provider: %v", err)
	}
	if _, ok := p.(*MemoryProvider); !ok {
		t.Fatalf("expected memory provider, got %T", p)
	}

	if _, err := NewProvider(Config{Provider: "memcached"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}

	_, err = NewProvider(Config{Provider: "redis", RedisConnectionString: "://bad"})
	if err == nil || !strings.Contains(err.Error(), "parse redis") {
		t.Fatalf("expected redis parse error, got %v", err)
	}
}

func TestNewRedisProviderUnreachable(t *testing.T) {
	if _, err := NewRedisProvider("redis://127.0.0.1:1/0"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestKeys(t *testing.T) {
	if got := CallbackKey("stripe", "evt_1"); got != "callback:stripe:evt_1" {
		t.Fatalf("unexpected callback key %q", got)
	}
	if got := CartKey(42); got != "cart:42" {
		t.Fatalf("unexpected cart key %q", got)
	}
	if got := redisCacheKey("cart:1"); got != "storefront:cart:1" {
		t.Fatalf("unexpected redis key %q", got)
	}
}
