package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrInvalidCoupon        = errors.New("invalid coupon definition")
	ErrInvalidProduct       = errors.New("invalid product definition")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidNotification  = errors.New("invalid payment notification")

	ErrProductUnavailable  = errors.New("product unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoShippingAddress   = errors.New("no shipping address")
	ErrNotCancellable      = errors.New("order cannot be cancelled")
	ErrInvalidTransition   = errors.New("order status transition not allowed")
	ErrConflict            = errors.New("concurrent update conflict")
	ErrDuplicateIdentifier = errors.New("duplicate order identifier")
	ErrOrderCreationFailed = errors.New("order creation failed")

	ErrCouponNotFound              = errors.New("invalid coupon code")
	ErrCouponExpired               = errors.New("coupon has expired")
	ErrCouponUsageLimitReached     = errors.New("coupon usage limit reached")
	ErrCouponMinimumPurchaseNotMet = errors.New("minimum purchase not met")
	ErrCouponUserLimitReached      = errors.New("coupon already used")
)

// CouponError carries the rejection reason of a coupon together with the
// minimum purchase amount when that is the reason.
type CouponError struct {
	Reason      error
	MinPurchase decimal.Decimal
}

func (e *CouponError) Error() string {
	if errors.Is(e.Reason, ErrCouponMinimumPurchaseNotMet) {
		return fmt.Sprintf("minimum purchase of %s required for this coupon", e.MinPurchase.StringFixed(2))
	}
	return e.Reason.Error()
}

func (e *CouponError) Unwrap() error {
	return e.Reason
}

// NewCouponError wraps reason into CouponError.
func NewCouponError(reason error) *CouponError {
	return &CouponError{Reason: reason}
}

// IsBusinessRule reports whether err is a user facing rule violation rather
// than an infrastructure failure.
func IsBusinessRule(err error) bool {
	for _, target := range []error{
		ErrProductUnavailable,
		ErrInsufficientStock,
		ErrEmptyCart,
		ErrNoShippingAddress,
		ErrNotCancellable,
		ErrInvalidTransition,
		ErrCouponNotFound,
		ErrCouponExpired,
		ErrCouponUsageLimitReached,
		ErrCouponMinimumPurchaseNotMet,
		ErrCouponUserLimitReached,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
