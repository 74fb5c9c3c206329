package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CartFacadeStub provides controllable cart behaviour.
type CartFacadeStub struct {
	CartFn          func(context.Context, int64) (*usecase.CartPreview, error)
	AddItemFn       func(context.Context, int64, int64, int) (*usecase.CartPreview, error)
	UpdateItemFn    func(context.Context, int64, int64, int) (*usecase.CartPreview, error)
	RemoveItemFn    func(context.Context, int64, int64) (*usecase.CartPreview, error)
	ApplyCouponFn   func(context.Context, int64, string) (*usecase.CartPreview, error)
	RemoveCouponFn  func(context.Context, int64) (*usecase.CartPreview, error)
	AddressesFn     func(context.Context, int64) ([]model.Address, error)
	CreateAddressFn func(context.Context, int64, usecase.AddressInput) (*model.Address, error)
}

// SamplePreview returns a one line priced cart.
func SamplePreview() *usecase.CartPreview {
	line := model.LineItem{ProductID: 1, ProductName: "Mug", ProductSKU: "MUG-1", UnitPrice: decimal.RequireFromString("250.00"), Quantity: 2}
	return &usecase.CartPreview{
		Lines: []model.LineItem{line},
		Totals: model.Totals{
			Subtotal: decimal.RequireFromString("500.00"),
			Tax:      decimal.RequireFromString("90.00"),
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("590.00"),
		},
	}
}

func (s CartFacadeStub) Cart(ctx context.Context, userID int64) (*usecase.CartPreview, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, userID)
	}
	return SamplePreview(), nil
}

func (s CartFacadeStub) AddCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error) {
	if s.AddItemFn != nil {
		return s.AddItemFn(ctx, userID, productID, qty)
	}
	return SamplePreview(), nil
}

func (s CartFacadeStub) UpdateCartItem(ctx context.Context, userID, productID int64, qty int) (*usecase.CartPreview, error) {
	if s.UpdateItemFn != nil {
		return s.UpdateItemFn(ctx, userID, productID, qty)
	}
	return SamplePreview(), nil
}

func (s CartFacadeStub) RemoveCartItem(ctx context.Context, userID, productID int64) (*usecase.CartPreview, error) {
	if s.RemoveItemFn != nil {
		return s.RemoveItemFn(ctx, userID, productID)
	}
	return &usecase.CartPreview{}, nil
}

func (s CartFacadeStub) ApplyCoupon(ctx context.Context, userID int64, code string) (*usecase.CartPreview, error) {
	if s.ApplyCouponFn != nil {
		return s.ApplyCouponFn(ctx, userID, code)
	}
	preview := SamplePreview()
	preview.CouponCode = code
	return preview, nil
}

func (s CartFacadeStub) RemoveCoupon(ctx context.Context, userID int64) (*usecase.CartPreview, error) {
	if s.RemoveCouponFn != nil {
		return s.RemoveCouponFn(ctx, userID)
	}
	return SamplePreview(), nil
}

func (s CartFacadeStub) Addresses(ctx context.Context, userID int64) ([]model.Address, error) {
	if s.AddressesFn != nil {
		return s.AddressesFn(ctx, userID)
	}
	return []model.Address{{ID: 1, UserID: userID, Name: "Asha", City: "Pune", Default: true}}, nil
}

func (s CartFacadeStub) CreateAddress(ctx context.Context, userID int64, in usecase.AddressInput) (*model.Address, error) {
	if s.CreateAddressFn != nil {
		return s.CreateAddressFn(ctx, userID, in)
	}
	return &model.Address{ID: 1, UserID: userID, Name: in.Name, City: in.City, Default: in.Default}, nil
}

// OrderFacadeStub provides controllable order behaviour.
type OrderFacadeStub struct {
	CheckoutFn func(context.Context, int64, usecase.PlaceOrderInput) (*model.Order, error)
	OrdersFn   func(context.Context, int64) ([]model.Order, error)
	OrderFn    func(context.Context, int64, model.Actor) (*model.Order, error)
	CancelFn   func(context.Context, int64, model.Actor) (*model.Order, error)
}

// SampleOrder returns a placed order owned by userID.
func SampleOrder(id, userID int64) *model.Order {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:            id,
		UserID:        userID,
		Number:        "SF202405011000000001",
		Status:        model.OrderStatusPlaced,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodCOD,
		Totals: model.Totals{
			Subtotal: decimal.RequireFromString("500.00"),
			Tax:      decimal.RequireFromString("90.00"),
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("590.00"),
		},
		ShippingAddress:   "Asha, 9999999999\n1 Main Road\nPune, MH 411001\nIndia",
		EstimatedDelivery: at.Add(120 * time.Hour),
		CreatedAt:         at,
		UpdatedAt:         at,
		Items: []model.OrderItem{{ID: 1, OrderID: id, LineItem: model.LineItem{
			ProductID: 1, ProductName: "Mug", ProductSKU: "MUG-1", UnitPrice: decimal.RequireFromString("250.00"), Quantity: 2,
		}}},
	}
}

func (s OrderFacadeStub) Checkout(ctx context.Context, userID int64, in usecase.PlaceOrderInput) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, userID, in)
	}
	return SampleOrder(1, userID), nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{*SampleOrder(1, userID)}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, actor)
	}
	return SampleOrder(orderID, actor.UserID), nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, actor)
	}
	order := SampleOrder(orderID, actor.UserID)
	order.Status = model.OrderStatusCancelled
	order.PaymentStatus = model.PaymentStatusCancelled
	return order, nil
}

// AdminFacadeStub provides controllable staff operations.
type AdminFacadeStub struct {
	AllOrdersFn     func(context.Context, string, model.Actor) ([]model.Order, error)
	AdvanceFn       func(context.Context, int64, string, model.Actor) (*model.Order, error)
	CouponsFn       func(context.Context) ([]model.Coupon, error)
	UpsertCouponFn  func(context.Context, usecase.CouponInput) (*model.Coupon, error)
	DeleteCouponFn  func(context.Context, string) error
	CreateProductFn func(context.Context, usecase.ProductInput) (*model.Product, error)
	UpdateProductFn func(context.Context, int64, usecase.ProductUpdate) (*model.Product, error)
}

func (s AdminFacadeStub) AllOrders(ctx context.Context, status string, actor model.Actor) ([]model.Order, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx, status, actor)
	}
	return []model.Order{*SampleOrder(1, 2)}, nil
}

func (s AdminFacadeStub) AdvanceOrderStatus(ctx context.Context, orderID int64, status string, actor model.Actor) (*model.Order, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, orderID, status, actor)
	}
	order := SampleOrder(orderID, 2)
	order.Status = model.OrderStatus(status)
	return order, nil
}

func (s AdminFacadeStub) Coupons(ctx context.Context) ([]model.Coupon, error) {
	if s.CouponsFn != nil {
		return s.CouponsFn(ctx)
	}
	return nil, nil
}

func (s AdminFacadeStub) UpsertCoupon(ctx context.Context, in usecase.CouponInput) (*model.Coupon, error) {
	if s.UpsertCouponFn != nil {
		return s.UpsertCouponFn(ctx, in)
	}
	return &model.Coupon{ID: 1, Code: in.Code, DiscountType: in.DiscountType, DiscountValue: in.DiscountValue,
		MinPurchase: in.MinPurchase, ValidFrom: in.ValidFrom, ValidUntil: in.ValidUntil, Active: in.Active}, nil
}

func (s AdminFacadeStub) DeleteCoupon(ctx context.Context, code string) error {
	if s.DeleteCouponFn != nil {
		return s.DeleteCouponFn(ctx, code)
	}
	return nil
}

func (s AdminFacadeStub) CreateProduct(ctx context.Context, in usecase.ProductInput) (*model.Product, error) {
	if s.CreateProductFn != nil {
		return s.CreateProductFn(ctx, in)
	}
	return &model.Product{ID: 1, SKU: in.SKU, Name: in.Name, Price: in.Price, Stock: in.Stock, Active: in.Active}, nil
}

func (s AdminFacadeStub) UpdateProduct(ctx context.Context, productID int64, in usecase.ProductUpdate) (*model.Product, error) {
	if s.UpdateProductFn != nil {
		return s.UpdateProductFn(ctx, productID, in)
	}
	return &model.Product{ID: productID, Name: in.Name, Price: in.Price, Active: in.Active}, nil
}

// PaymentFacadeStub simulates gateway notification handling.
type PaymentFacadeStub struct {
	HandleFn func(context.Context, model.PaymentNotification) (usecase.PaymentResult, error)
	StripeFn func([]byte, string) (model.PaymentNotification, error)
	HealthFn func(context.Context) error
}

func (s PaymentFacadeStub) HandlePayment(ctx context.Context, n model.PaymentNotification) (usecase.PaymentResult, error) {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, n)
	}
	return usecase.PaymentApplied, nil
}

func (s PaymentFacadeStub) ParseStripeWebhook(payload []byte, signature string) (model.PaymentNotification, error) {
	if s.StripeFn != nil {
		return s.StripeFn(payload, signature)
	}
	return model.PaymentNotification{Source: "stripe", EventID: "evt_1", OrderNumber: "SF1", Outcome: model.PaymentOutcomeSuccess}, nil
}

func (s PaymentFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}

// StoreFacadeStub aggregates facade stubs for HTTP layer tests.
type StoreFacadeStub struct {
	AuthFacadeStub
	CartFacadeStub
	OrderFacadeStub
	AdminFacadeStub
	PaymentFacadeStub
}

// WorkerFacadeStub feeds outbox batches to the dispatcher and records dispatches.
type WorkerFacadeStub struct {
	Batches    [][]model.OrderEvent
	PendingFn  func(context.Context, int) ([]model.OrderEvent, error)
	DispatchFn func(context.Context, model.OrderEvent) error

	mu         sync.Mutex
	calls      int
	dispatched []model.OrderEvent
}

// PendingEvents returns the next configured batch, then nothing.
func (s *WorkerFacadeStub) PendingEvents(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= len(s.Batches) {
		return s.Batches[s.calls-1], nil
	}
	return nil, nil
}

// DispatchEvent records event after DispatchFn, if any, accepts it.
func (s *WorkerFacadeStub) DispatchEvent(ctx context.Context, event model.OrderEvent) error {
	if s.DispatchFn != nil {
		if err := s.DispatchFn(ctx, event); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = append(s.dispatched, event)
	return nil
}

// Dispatched returns events dispatched so far.
func (s *WorkerFacadeStub) Dispatched() []model.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderEvent(nil), s.dispatched...)
}
