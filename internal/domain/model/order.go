package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

var orderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// ParseOrderStatus converts raw input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range orderStatuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Terminal reports whether no fulfillment progress is expected after this status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// PaymentStatus describes settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod is the way a customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodPaypal   PaymentMethod = "paypal"
	PaymentMethodUPI      PaymentMethod = "upi"
	PaymentMethodWallet   PaymentMethod = "wallet"
)

// ParsePaymentMethod validates a payment method name.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case PaymentMethodCOD, PaymentMethodRazorpay, PaymentMethodStripe,
		PaymentMethodPaypal, PaymentMethodUPI, PaymentMethodWallet:
		return m, nil
	}
	return "", fmt.Errorf("unsupported payment method %q", raw)
}

// Totals is the priced breakdown of a cart or an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Consistent reports whether Total equals Subtotal + Tax + Shipping - Discount.
func (t Totals) Consistent() bool {
	return t.Subtotal.Add(t.Tax).Add(t.Shipping).Sub(t.Discount).Equal(t.Total)
}

// OrderItem is a persisted line of an order with immutable snapshots.
type OrderItem struct {
	ID      int64
	OrderID int64
	LineItem
}

// Order describes a purchase placed by a customer.
type Order struct {
	ID            int64
	UserID        int64
	Number        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	PaymentID     string
	Totals
	CouponCode        string
	TrackingCode      string
	ShippingAddress   string
	Notes             string
	EstimatedDelivery time.Time
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []OrderItem
}

// Cancellable reports whether the order may still be cancelled.
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPlaced || o.Status == OrderStatusPacked
}

// StockReleased reports whether ordered quantities were already returned to inventory.
func (o *Order) StockReleased() bool {
	return o.Status == OrderStatusCancelled || o.Status == OrderStatusReturned
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	cp := *o
	if o.DeliveredAt != nil {
		at := *o.DeliveredAt
		cp.DeliveredAt = &at
	}
	if o.Items != nil {
		cp.Items = append([]OrderItem(nil), o.Items...)
	}
	return &cp
}
