package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponRequest creates or replaces a coupon.
type CouponRequest struct {
	Code          string           `json:"code" binding:"required"`
	DiscountType  string           `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MinPurchase   decimal.Decimal  `json:"min_purchase"`
	MaxDiscount   *decimal.Decimal `json:"max_discount"`
	UsageLimit    *int             `json:"usage_limit"`
	UserLimit     *int             `json:"user_limit"`
	ValidFrom     time.Time        `json:"valid_from" binding:"required"`
	ValidUntil    time.Time        `json:"valid_until" binding:"required"`
	Active        *bool            `json:"active"`
}

// CouponResponse describes a stored coupon.
type CouponResponse struct {
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	MinPurchase   string    `json:"min_purchase"`
	MaxDiscount   *string   `json:"max_discount,omitempty"`
	UsageLimit    *int      `json:"usage_limit,omitempty"`
	UsedCount     int       `json:"used_count"`
	UserLimit     *int      `json:"user_limit,omitempty"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	Active        bool      `json:"active"`
}

// ProductRequest creates a product or, without sku and stock, updates one.
type ProductRequest struct {
	SKU    string          `json:"sku"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Active *bool           `json:"active"`
}

// ProductResponse describes a catalog entry.
type ProductResponse struct {
	ID        int64  `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	SoldCount int    `json:"sold_count"`
	Active    bool   `json:"active"`
}
