// Package pricing turns line items and an optional coupon into order totals.
// Everything here is pure: no I/O, no clock reads, no mutation of inputs.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Config holds tax and shipping parameters.
type Config struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultConfig returns 18% tax, free shipping from 500 and a flat fee of 50.
func DefaultConfig() Config {
	return Config{
		TaxRate:               decimal.RequireFromString("0.18"),
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingFee:       decimal.NewFromInt(50),
	}
}

// Validate checks that rates and amounts are usable.
func (c Config) Validate() error {
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("tax rate must be within [0, 1]")
	}
	if c.FreeShippingThreshold.IsNegative() || c.FlatShippingFee.IsNegative() {
		return errors.New("shipping amounts must not be negative")
	}
	return nil
}

// Calculator computes totals with a fixed configuration.
type Calculator struct {
	cfg Config
}

// NewCalculator constructs Calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns calculator parameters.
func (c *Calculator) Config() Config {
	return c.cfg
}

// ComputeTotals prices items. The coupon is ignored when it does not pass
// ValidateCoupon for the resulting subtotal at now.
func (c *Calculator) ComputeTotals(items []model.LineItem, coupon *model.Coupon, now time.Time) model.Totals {
	subtotal := Subtotal(items)

	discount := decimal.Zero
	if coupon != nil && ValidateCoupon(coupon, subtotal, now) == nil {
		discount = Discount(coupon, subtotal)
	}

	return c.totals(subtotal, discount)
}

// ComputeWithDiscount prices items with an already validated coupon.
func (c *Calculator) ComputeWithDiscount(items []model.LineItem, coupon *model.Coupon) model.Totals {
	subtotal := Subtotal(items)
	discount := decimal.Zero
	if coupon != nil {
		discount = Discount(coupon, subtotal)
	}
	return c.totals(subtotal, discount)
}

func (c *Calculator) totals(subtotal, discount decimal.Decimal) model.Totals {
	tax := subtotal.Mul(c.cfg.TaxRate).Round(moneyPlaces)

	shipping := c.cfg.FlatShippingFee
	if subtotal.GreaterThanOrEqual(c.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return model.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount).Add(shipping),
	}
}

// Subtotal sums unit price times quantity over items.
func Subtotal(items []model.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// Discount returns the coupon reduction for subtotal, never above subtotal.
func Discount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(hundred).Round(moneyPlaces)
		if coupon.MaxDiscount.Valid {
			discount = decimal.Min(discount, coupon.MaxDiscount.Decimal)
		}
	case model.DiscountFixed:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal)
}

// ValidateCoupon decides whether coupon is usable for subtotal at now. The
// first failing check wins: not found or inactive, expired, usage limit,
// minimum purchase.
func ValidateCoupon(coupon *model.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if coupon == nil || !coupon.Active {
		return domainErrors.NewCouponError(domainErrors.ErrCouponNotFound)
	}
	if !coupon.ValidAt(now) {
		return domainErrors.NewCouponError(domainErrors.ErrCouponExpired)
	}
	if coupon.Exhausted() {
		return domainErrors.NewCouponError(domainErrors.ErrCouponUsageLimitReached)
	}
	if subtotal.LessThan(coupon.MinPurchase) {
		return &domainErrors.CouponError{
			Reason:      domainErrors.ErrCouponMinimumPurchaseNotMet,
			MinPurchase: coupon.MinPurchase,
		}
	}
	return nil
}
