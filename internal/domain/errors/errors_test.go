package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"insufficient stock", ErrInsufficientStock},
		{"not cancellable", ErrNotCancellable},
		{"empty cart", ErrEmptyCart},
		{"order creation failed", ErrOrderCreationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestCouponErrorUnwrapsReason(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NewCouponError(ErrCouponExpired))
	if !stdErrors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected wrapped coupon error to match reason, got %v", err)
	}
	var couponErr *CouponError
	if !stdErrors.As(err, &couponErr) {
		t.Fatalf("expected CouponError in chain")
	}
}

func TestCouponErrorMessageIncludesMinimum(t *testing.T) {
	err := &CouponError{Reason: ErrCouponMinimumPurchaseNotMet, MinPurchase: decimal.NewFromInt(750)}
	if !strings.Contains(err.Error(), "750.00") {
		t.Fatalf("expected minimum amount in message, got %q", err.Error())
	}
}

func TestIsBusinessRule(t *testing.T) {
	if !IsBusinessRule(fmt.Errorf("wrap: %w", ErrInsufficientStock)) {
		t.Fatal("insufficient stock must be a business rule error")
	}
	if !IsBusinessRule(NewCouponError(ErrCouponUsageLimitReached)) {
		t.Fatal("coupon rejection must be a business rule error")
	}
	if IsBusinessRule(stdErrors.New("connection reset")) {
		t.Fatal("infrastructure error must not be a business rule error")
	}
}
