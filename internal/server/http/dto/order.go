package dto

import "time"

// CheckoutRequest places an order for the session cart.
type CheckoutRequest struct {
	AddressID     int64  `json:"address_id"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Notes         string `json:"notes"`
}

// StatusRequest moves an order to another status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderResponse describes an order with its lines.
type OrderResponse struct {
	ID                int64          `json:"id"`
	Number            string         `json:"order_number"`
	Status            string         `json:"status"`
	PaymentStatus     string         `json:"payment_status"`
	PaymentMethod     string         `json:"payment_method"`
	Totals            TotalsResponse `json:"totals"`
	CouponCode        string         `json:"coupon_code,omitempty"`
	TrackingCode      string         `json:"tracking_code,omitempty"`
	ShippingAddress   string         `json:"shipping_address"`
	Notes             string         `json:"notes,omitempty"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	Items             []LineResponse `json:"items,omitempty"`
}
