package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/pricing"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewInventoryLedger,
	newCalculator,
	newIdentifierGenerator,
	newAuthUseCase,
	newCheckoutUseCase,
	newLifecycleUseCase,
	newPaymentUseCase,
	newCouponUseCase,
	NewCartUseCase,
	NewOrderUseCase,
	NewProductUseCase,
	NewAddressUseCase,
	NewEventUseCase,
)

func newCalculator(cfg *config.Config) *pricing.Calculator {
	return pricing.NewCalculator(cfg.Pricing())
}

func newIdentifierGenerator(cfg *config.Config) IdentifierGenerator {
	return NewIdentifierGenerator(cfg.OrderNumberPrefix)
}

type authParams struct {
	fx.In

	Repos    repository.Factory
	Hasher   pkgAuth.PasswordHasher
	Strategy pkgAuth.Strategy
	Config   *config.Config
}

func newAuthUseCase(p authParams) *AuthUseCase {
	return NewAuthUseCase(p.Repos.Users(), p.Hasher, p.Strategy, p.Config.AdminLogins)
}

type checkoutParams struct {
	fx.In

	Repos      repository.Factory
	Tx         repository.Transactor
	Calculator *pricing.Calculator
	Ledger     *InventoryLedger
	IDs        IdentifierGenerator
	Config     *config.Config
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Repos, p.Tx, p.Calculator, p.Ledger, p.IDs, CheckoutOptions{
		DeliveryEstimate:   p.Config.DeliveryEstimate,
		TrackingAtCheckout: p.Config.TrackingAtCheckout,
	}, p.Metrics, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Tx      repository.Transactor
	Ledger  *InventoryLedger
	IDs     IdentifierGenerator
	Config  *config.Config
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

func newLifecycleUseCase(p lifecycleParams) *OrderLifecycleUseCase {
	return NewOrderLifecycleUseCase(p.Tx, p.Ledger, p.IDs, LifecycleOptions{Mode: p.Config.TransitionMode()}, p.Metrics, p.Logger)
}

type paymentParams struct {
	fx.In

	Lifecycle *OrderLifecycleUseCase
	Cache     cache.Provider
	Config    *config.Config
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(p.Lifecycle, p.Cache, p.Config.CallbackDedupTTL, p.Metrics, p.Logger)
}

func newCouponUseCase(repos repository.Factory, logger *slog.Logger) *CouponUseCase {
	return NewCouponUseCase(repos, nil, logger)
}
