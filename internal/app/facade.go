package app

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports backing store availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// WebhookParser turns a signed gateway webhook into a payment notification.
type WebhookParser interface {
	Parse(payload []byte, signature string) (model.PaymentNotification, error)
}

// StoreFacade is the single entry point of the HTTP layer and the outbox
// dispatcher into the use cases.
type StoreFacade struct {
	auth      *usecase.AuthUseCase
	carts     *usecase.CartUseCase
	addresses *usecase.AddressUseCase
	orders    *usecase.OrderUseCase
	lifecycle *usecase.OrderLifecycleUseCase
	payments  *usecase.PaymentUseCase
	coupons   *usecase.CouponUseCase
	products  *usecase.ProductUseCase
	events    *usecase.EventUseCase
	stripe    WebhookParser
	health    HealthChecker
}

// FacadeDeps lists the collaborators of StoreFacade.
type FacadeDeps struct {
	Auth      *usecase.AuthUseCase
	Carts     *usecase.CartUseCase
	Addresses *usecase.AddressUseCase
	Orders    *usecase.OrderUseCase
	Lifecycle *usecase.OrderLifecycleUseCase
	Payments  *usecase.PaymentUseCase
	Coupons   *usecase.CouponUseCase
	Products  *usecase.ProductUseCase
	Events    *usecase.EventUseCase
	Stripe    WebhookParser
	Health    HealthChecker
}

func NewStoreFacade(d FacadeDeps) *StoreFacade {
	return &StoreFacade{
		auth:      d.Auth,
		carts:     d.Carts,
		addresses: d.Addresses,
		orders:    d.Orders,
		lifecycle: d.Lifecycle,
		payments:  d.Payments,
		coupons:   d.Coupons,
		products:  d.Products,
		events:    d.Events,
		stripe:    d.Stripe,
		health:    d.Health,
	}
}

func (f *StoreFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *StoreFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *StoreFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) Actor(ctx context.Context, userID int64) (model.Actor, error) {
	return f.auth.Actor(ctx, userID)
}

func (f *StoreFacade) Cart(ctx context.Context, userID int64) (*usecase.CartPreview, error) {
	return f.carts.Get(ctx, userID)
}

func (f *StoreFacade) AddCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error) {
	return f.carts.AddItem(ctx, userID, productID, qty)
}

func (f *StoreFacade) UpdateCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error) {
	return f.carts.UpdateItem(ctx, userID, productID, qty)
}

func (f *StoreFacade) RemoveCartItem(ctx context.Context, userID, productID int64) (*usecase.CartPreview, error) {
	return f.carts.RemoveItem(ctx, userID, productID)
}

func (f *StoreFacade) ApplyCoupon(ctx context.Context, userID int64, code string) (*usecase.CartPreview, error) {
	return f.carts.ApplyCoupon(ctx, userID, code)
}

func (f *StoreFacade) RemoveCoupon(ctx context.Context, userID int64) (*usecase.CartPreview, error) {
	return f.carts.RemoveCoupon(ctx, userID)
}

func (f *StoreFacade) Addresses(ctx context.Context, userID int64) ([]model.Address, error) {
	return f.addresses.List(ctx, userID)
}

func (f *StoreFacade) CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error) {
	return f.addresses.Create(ctx, userID, in)
}

func (f *StoreFacade) Checkout(ctx context.Context, userID int64, in usecase.PlaceOrderInput) (*model.Order, error) {
	return f.carts.Checkout(ctx, userID, in)
}

func (f *StoreFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StoreFacade) Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, actor)
}

func (f *StoreFacade) CancelOrder(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	return f.lifecycle.Cancel(ctx, orderID, actor)
}

func (f *StoreFacade) AllOrders(ctx context.Context, status string, actor model.Actor) ([]model.Order, error) {
	return f.orders.List(ctx, status, actor)
}

func (f *StoreFacade) AdvanceOrderStatus(ctx context.Context, orderID int64, status string, actor model.Actor) (*model.Order, error) {
	return f.lifecycle.AdvanceStatus(ctx, orderID, status, actor)
}

func (f *StoreFacade) Coupons(ctx context.Context) ([]model.Coupon, error) {
	return f.coupons.List(ctx)
}

func (f *StoreFacade) UpsertCoupon(ctx context.Context, in usecase.CouponInput) (*model.Coupon, error) {
	return f.coupons.Upsert(ctx, in)
}

func (f *StoreFacade) DeleteCoupon(ctx context.Context, code string) error {
	return f.coupons.Delete(ctx, code)
}

func (f *StoreFacade) CreateProduct(ctx context.Context, in usecase.ProductInput) (*model.Product, error) {
	return f.products.Create(ctx, in)
}

func (f *StoreFacade) UpdateProduct(ctx context.Context, productID int64, in usecase.ProductUpdate) (*model.Product, error) {
	return f.products.Update(ctx, productID, in)
}

func (f *StoreFacade) HandlePayment(ctx context.Context, n model.PaymentNotification) (usecase.PaymentResult, error) {
	return f.payments.HandleNotification(ctx, n)
}

// ParseStripeWebhook verifies and decodes a Stripe webhook body.
func (f *StoreFacade) ParseStripeWebhook(payload []byte, signature string) (model.PaymentNotification, error) {
	return f.stripe.Parse(payload, signature)
}

func (f *StoreFacade) PendingEvents(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	return f.events.PendingEvents(ctx, limit)
}

func (f *StoreFacade) DispatchEvent(ctx context.Context, event model.OrderEvent) error {
	return f.events.Dispatch(ctx, event)
}

func (f *StoreFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
