package usecase_test

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/cart"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pricing"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *testhelpers.MemoryStore
	provider  cache.Provider
	ledger    *usecase.InventoryLedger
	checkout  *usecase.CheckoutUseCase
	lifecycle *usecase.OrderLifecycleUseCase
	coupons   *usecase.CouponUseCase
	carts     *usecase.CartUseCase
	payments  *usecase.PaymentUseCase
	events    *usecase.EventUseCase
	publisher *testhelpers.PublisherStub
	ids       *stubIdentifiers
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	mode     model.TransitionMode
	tracking bool
}

func withMode(mode model.TransitionMode) fixtureOption {
	return func(c *fixtureConfig) { c.mode = mode }
}

// withoutTrackingAtCheckout leaves tracking codes to the shipped transition.
func withoutTrackingAtCheckout() fixtureOption {
	return func(c *fixtureConfig) { c.tracking = false }
}

// stubIdentifiers hands out numbered identifiers; Numbers, when set, are
// used first so tests can force collisions.
type stubIdentifiers struct {
	Numbers []string

	mu   sync.Mutex
	next int
}

func (s *stubIdentifiers) OrderNumber(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	if len(s.Numbers) > 0 {
		n := s.Numbers[0]
		s.Numbers = s.Numbers[1:]
		return n
	}
	return fmt.Sprintf("SF%s%04d", now.Format("20060102150405"), s.next)
}

func (s *stubIdentifiers) TrackingCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("SF-TRACK%04d", s.next)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{mode: model.TransitionPermissive, tracking: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := testhelpers.NewMemoryStore()
	store.Now = func() time.Time { return fixedNow }
	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	logger := discardLogger()
	collector := metrics.New()
	clock := func() time.Time { return fixedNow }
	ids := &stubIdentifiers{}
	ledger := usecase.NewInventoryLedger()
	publisher := &testhelpers.PublisherStub{}

	checkout := usecase.NewCheckoutUseCase(store, store, pricing.NewCalculator(pricing.DefaultConfig()), ledger, ids,
		usecase.CheckoutOptions{DeliveryEstimate: 120 * time.Hour, TrackingAtCheckout: cfg.tracking, Now: clock}, collector, logger)
	lifecycle := usecase.NewOrderLifecycleUseCase(store, ledger, ids, usecase.LifecycleOptions{Mode: cfg.mode, Now: clock}, collector, logger)
	coupons := usecase.NewCouponUseCase(store, clock, logger)

	return &fixture{
		store:     store,
		provider:  provider,
		ledger:    ledger,
		checkout:  checkout,
		lifecycle: lifecycle,
		coupons:   coupons,
		carts:     usecase.NewCartUseCase(cart.NewStore(provider, time.Hour), store, coupons, checkout, logger),
		payments:  usecase.NewPaymentUseCase(lifecycle, provider, time.Hour, collector, logger),
		events:    usecase.NewEventUseCase(store, publisher, collector, logger),
		publisher: publisher,
		ids:       ids,
	}
}

func (f *fixture) product(sku string, price string, stock int) model.Product {
	return f.store.SeedProduct(model.Product{SKU: sku, Name: sku, Price: decimal.RequireFromString(price), Stock: stock, Active: true})
}

func (f *fixture) address(userID int64) model.Address {
	return f.store.SeedAddress(model.Address{
		UserID: userID, Name: "Asha", Mobile: "9999999999", Line1: "1 Main Road",
		City: "Pune", State: "MH", Pincode: "411001", Country: "India", Default: true,
	})
}

func (f *fixture) coupon(c model.Coupon) model.Coupon {
	if c.ValidFrom.IsZero() {
		c.ValidFrom = fixedNow.Add(-24 * time.Hour)
	}
	if c.ValidUntil.IsZero() {
		c.ValidUntil = fixedNow.Add(24 * time.Hour)
	}
	c.Active = true
	return f.store.SeedCoupon(c)
}

func (f *fixture) request(userID int64, items map[int64]int) usecase.CheckoutRequest {
	return usecase.CheckoutRequest{UserID: userID, Cart: model.Cart{Items: items}, PaymentMethod: "cod"}
}

// placeOrder checks out qty units of a fresh product for userID.
func (f *fixture) placeOrder(t *testing.T, userID int64, qty int) (*model.Order, model.Product) {
	t.Helper()
	p := f.product(fmt.Sprintf("SKU-%d", len(f.store.AllOrders())+1), "100.00", 10)
	f.address(userID)
	order, err := f.checkout.Checkout(t.Context(), f.request(userID, map[int64]int{p.ID: qty}))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return order, p
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decimalCap(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }
