package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// CouponInput defines a coupon created or replaced by an admin.
type CouponInput struct {
	Code          string             `validate:"required,max=32"`
	DiscountType  model.DiscountType `validate:"oneof=percentage fixed"`
	DiscountValue decimal.Decimal
	MinPurchase   decimal.Decimal
	MaxDiscount   decimal.NullDecimal
	UsageLimit    *int      `validate:"omitempty,gte=1"`
	UserLimit     *int      `validate:"omitempty,gte=1"`
	ValidFrom     time.Time `validate:"required"`
	ValidUntil    time.Time `validate:"required,gtefield=ValidFrom"`
	Active        bool
}

func (in CouponInput) validate() error {
	if err := validateInput(domainErrors.ErrInvalidCoupon, in); err != nil {
		return err
	}
	switch {
	case !in.DiscountValue.IsPositive():
		return fmt.Errorf("%w: discount value must be positive", domainErrors.ErrInvalidCoupon)
	case in.DiscountType == model.DiscountPercentage && in.DiscountValue.GreaterThan(hundred):
		return fmt.Errorf("%w: percentage above 100", domainErrors.ErrInvalidCoupon)
	case in.MinPurchase.IsNegative():
		return fmt.Errorf("%w: negative minimum purchase", domainErrors.ErrInvalidCoupon)
	case in.MaxDiscount.Valid && in.MaxDiscount.Decimal.IsNegative():
		return fmt.Errorf("%w: negative maximum discount", domainErrors.ErrInvalidCoupon)
	}
	return nil
}

// CouponUseCase validates coupons for carts and maintains them for admins.
type CouponUseCase struct {
	repos  repository.Factory
	now    func() time.Time
	logger *slog.Logger
}

// NewCouponUseCase constructs CouponUseCase.
func NewCouponUseCase(repos repository.Factory, now func() time.Time, logger *slog.Logger) *CouponUseCase {
	if now == nil {
		now = time.Now
	}
	return &CouponUseCase{repos: repos, now: now, logger: logger}
}

// Validate looks code up and checks it against subtotal without changing
// usage. The returned error is a *CouponError for rule violations.
func (u *CouponUseCase) Validate(ctx context.Context, userID int64, code string, subtotal decimal.Decimal) (*model.Coupon, error) {
	code = model.CanonicalCouponCode(code)
	if code == "" {
		return nil, domainErrors.NewCouponError(domainErrors.ErrCouponNotFound)
	}
	return loadCoupon(ctx, u.repos, userID, code, subtotal, u.now(), false)
}

// Upsert creates the coupon or replaces its terms, keeping usage.
func (u *CouponUseCase) Upsert(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	in.Code = model.CanonicalCouponCode(in.Code)
	if err := in.validate(); err != nil {
		return nil, err
	}

	maxDiscount := in.MaxDiscount
	if in.DiscountType == model.DiscountFixed {
		maxDiscount = decimal.NullDecimal{}
	}

	coupon, err := u.repos.Coupons().Upsert(ctx, model.Coupon{
		Code:          in.Code,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinPurchase:   in.MinPurchase,
		MaxDiscount:   maxDiscount,
		UsageLimit:    in.UsageLimit,
		UserLimit:     in.UserLimit,
		ValidFrom:     in.ValidFrom,
		ValidUntil:    in.ValidUntil,
		Active:        in.Active,
	})
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "coupon saved", slog.String("code", coupon.Code))
	return coupon, nil
}

// Delete removes the coupon with code.
func (u *CouponUseCase) Delete(ctx context.Context, code string) error {
	return u.repos.Coupons().Delete(ctx, model.CanonicalCouponCode(code))
}

// List returns all coupons ordered by code.
func (u *CouponUseCase) List(ctx context.Context) ([]model.Coupon, error) {
	return u.repos.Coupons().List(ctx)
}
