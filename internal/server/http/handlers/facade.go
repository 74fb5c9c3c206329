package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
	Actor(ctx context.Context, userID int64) (model.Actor, error)
}

// CartFacade exposes the session cart and saved addresses.
type CartFacade interface {
	Cart(ctx context.Context, userID int64) (*usecase.CartPreview, error)
	AddCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error)
	UpdateCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error)
	RemoveCartItem(ctx context.Context, userID, productID int64) (*usecase.CartPreview, error)
	ApplyCoupon(ctx context.Context, userID int64, code string) (*usecase.CartPreview, error)
	RemoveCoupon(ctx context.Context, userID int64) (*usecase.CartPreview, error)
	Addresses(ctx context.Context, userID int64) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error)
}

// OrderFacade covers checkout and customer order operations.
type OrderFacade interface {
	Checkout(ctx context.Context, userID int64, in usecase.PlaceOrderInput) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error)
}

// AdminFacade covers staff operations.
type AdminFacade interface {
	AllOrders(ctx context.Context, status string, actor model.Actor) ([]model.Order, error)
	AdvanceOrderStatus(ctx context.Context, orderID int64, status string, actor model.Actor) (*model.Order, error)
	Coupons(ctx context.Context) ([]model.Coupon, error)
	UpsertCoupon(ctx context.Context, in usecase.CouponInput) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
	CreateProduct(ctx context.Context, in usecase.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID int64, in usecase.ProductUpdate) (*model.Product, error)
}

// PaymentFacade accepts gateway notifications.
type PaymentFacade interface {
	HandlePayment(ctx context.Context, n model.PaymentNotification) (usecase.PaymentResult, error)
	ParseStripeWebhook(payload []byte, signature string) (model.PaymentNotification, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CartFacade
	OrderFacade
	AdminFacade
	PaymentFacade
	HealthFacade
}
