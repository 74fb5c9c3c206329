package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how coupon value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a named discount rule.
type Coupon struct {
	ID            int64
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinPurchase   decimal.Decimal
	// MaxDiscount caps percentage discounts. Ignored for fixed coupons.
	MaxDiscount decimal.NullDecimal
	// UsageLimit is nil for unlimited coupons.
	UsageLimit *int
	UsedCount  int
	// UserLimit bounds redemptions per customer, nil for unlimited.
	UserLimit  *int
	ValidFrom  time.Time
	ValidUntil time.Time
	Active     bool
	CreatedAt  time.Time
}

// CanonicalCouponCode returns the lookup form of a coupon code.
func CanonicalCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Exhausted reports whether the global usage limit is reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit
}

// ValidAt reports whether now falls into the validity window, bounds inclusive.
func (c *Coupon) ValidAt(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}
