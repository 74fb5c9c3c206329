package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type failingProvider struct {
	cache.Provider
	err error
}

func (f failingProvider) Get(context.Context, string) (string, error) { return "", f.err }

func (f failingProvider) Set(context.Context, string, string, time.Duration) error { return f.err }

func newTestStore(t *testing.T) (*Store, cache.Provider) {
	t.Helper()
	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("memory provider: %v", err)
	}
	return NewStore(provider, time.Hour), provider
}

func TestLoadReturnsEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.Load(context.Background(), 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.IsEmpty() || c.Items == nil {
		t.Fatalf("expected empty initialized cart, got %+v", c)
	}
}

func TestSaveLoadClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := model.NewCart()
	c.Items[7] = 2
	c.Items[3] = 1
	c.CouponCode = "SAVE10"

	if err := store.Save(ctx, 5, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Items[7] != 2 || loaded.Items[3] != 1 || loaded.CouponCode != "SAVE10" {
		t.Fatalf("unexpected cart %+v", loaded)
	}

	other, _ := store.Load(ctx, 6)
	if !other.IsEmpty() {
		t.Fatalf("carts must be per user, got %+v", other)
	}

	if err := store.Clear(ctx, 5); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared, _ := store.Load(ctx, 5)
	if !cleared.IsEmpty() || cleared.CouponCode != "" {
		t.Fatalf("expected cleared cart, got %+v", cleared)
	}
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	store, provider := newTestStore(t)
	ctx := context.Background()
	_ = provider.Set(ctx, cache.CartKey(9), "{not json", time.Minute)

	if _, err := store.Load(ctx, 9); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProviderErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(failingProvider{err: boom}, time.Minute)

	if _, err := store.Load(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if err := store.Save(context.Background(), 1, model.NewCart()); !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
