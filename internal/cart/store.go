// Package cart keeps per-user session carts in the cache.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Store persists carts as JSON documents keyed by user.
type Store struct {
	provider cache.Provider
	ttl      time.Duration
}

// NewStore constructs Store. Carts expire ttl after their last change.
func NewStore(provider cache.Provider, ttl time.Duration) *Store {
	return &Store{provider: provider, ttl: ttl}
}

// Load returns the user's cart or an empty one.
func (s *Store) Load(ctx context.Context, userID int64) (model.Cart, error) {
	raw, err := s.provider.Get(ctx, cache.CartKey(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return model.NewCart(), nil
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var c model.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return model.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = make(map[int64]int)
	}
	return c, nil
}

// Save replaces the user's cart.
func (s *Store) Save(ctx context.Context, userID int64, c model.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.provider.Set(ctx, cache.CartKey(userID), string(raw), s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear drops the user's cart together with its coupon marker.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.provider.Delete(ctx, cache.CartKey(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
