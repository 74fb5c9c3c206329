package stripe

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the Stripe webhook parser.
var Module = fx.Provide(func(cfg *config.Config) *WebhookParser {
	return NewWebhookParser(cfg.StripeWebhookSecret)
})
