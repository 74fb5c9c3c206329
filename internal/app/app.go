package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/stripe"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

// Module wires the facade, runtime components and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newStoreFacade,
		newHTTPServer,
		newOutboxDispatcher,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Carts     *usecase.CartUseCase
	Addresses *usecase.AddressUseCase
	Orders    *usecase.OrderUseCase
	Lifecycle *usecase.OrderLifecycleUseCase
	Payments  *usecase.PaymentUseCase
	Coupons   *usecase.CouponUseCase
	Products  *usecase.ProductUseCase
	Events    *usecase.EventUseCase
	Stripe    *stripe.WebhookParser
	Storage   *postgres.Storage
}

func newStoreFacade(p facadeParams) *StoreFacade {
	return NewStoreFacade(FacadeDeps{
		Auth:      p.Auth,
		Carts:     p.Carts,
		Addresses: p.Addresses,
		Orders:    p.Orders,
		Lifecycle: p.Lifecycle,
		Payments:  p.Payments,
		Coupons:   p.Coupons,
		Products:  p.Products,
		Events:    p.Events,
		Stripe:    p.Stripe,
		Health:    p.Storage,
	})
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *StoreFacade
	Config *config.Config
	Logger *slog.Logger
}

func newOutboxDispatcher(p workerParams) *worker.OutboxDispatcher {
	return worker.NewOutboxDispatcher(
		p.Facade,
		p.Config.EventPollInterval,
		p.Config.EventBatchSize,
		p.Config.EventWorkers,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.OutboxDispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting storefront", slog.String("addr", p.Server.Addr))
			p.Dispatcher.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Dispatcher.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
