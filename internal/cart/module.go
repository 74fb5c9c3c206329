package cart

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the session cart store.
var Module = fx.Provide(newStore)

func newStore(provider cache.Provider, cfg *config.Config) *Store {
	return NewStore(provider, cfg.CartTTL)
}
