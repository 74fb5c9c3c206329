package cache

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the configured cache provider and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(newProvider),
	fx.Invoke(registerClose),
)

func newProvider(cfg *config.Config) (Provider, error) {
	return NewProvider(Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisURL,
	})
}

func registerClose(lc fx.Lifecycle, provider Provider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := provider.Close(); err != nil {
				logger.Error("failed to close cache provider", slog.Any("error", err))
				return err
			}
			return nil
		},
	})
}
