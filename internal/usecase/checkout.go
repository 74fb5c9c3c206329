package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pricing"
)

const (
	// maxConflictRetries is how many times a serialization failure reruns the transaction.
	maxConflictRetries = 1
	// maxIdentifierAttempts bounds order number and tracking code regeneration.
	maxIdentifierAttempts = 5
)

// CheckoutRequest is the input of a checkout.
type CheckoutRequest struct {
	UserID        int64
	Cart          model.Cart
	CouponCode    string
	AddressID     int64
	PaymentMethod string
	Notes         string
}

// CheckoutOptions tunes order creation.
type CheckoutOptions struct {
	DeliveryEstimate   time.Duration
	TrackingAtCheckout bool
	Now                func() time.Time
}

// CartPreview is a priced cart. CouponErr explains why an applied coupon
// gives no discount.
type CartPreview struct {
	Lines      []model.LineItem
	Totals     model.Totals
	CouponCode string
	CouponErr  error
}

// CheckoutUseCase converts carts into orders.
type CheckoutUseCase struct {
	repos   repository.Factory
	tx      repository.Transactor
	calc    *pricing.Calculator
	ledger  *InventoryLedger
	ids     IdentifierGenerator
	opts    CheckoutOptions
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	repos repository.Factory,
	tx repository.Transactor,
	calc *pricing.Calculator,
	ledger *InventoryLedger,
	ids IdentifierGenerator,
	opts CheckoutOptions,
	collector *metrics.Collector,
	logger *slog.Logger,
) *CheckoutUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CheckoutUseCase{
		repos:   repos,
		tx:      tx,
		calc:    calc,
		ledger:  ledger,
		ids:     ids,
		opts:    opts,
		metrics: collector,
		logger:  logger,
	}
}

// Preview prices cart without touching any state.
func (u *CheckoutUseCase) Preview(ctx context.Context, userID int64, cart model.Cart) (*CartPreview, error) {
	lines, err := u.ledger.PriceCart(ctx, u.repos.Products(), cart)
	if err != nil {
		return nil, err
	}

	preview := &CartPreview{Lines: lines}
	var coupon *model.Coupon
	if code := model.CanonicalCouponCode(cart.CouponCode); code != "" && len(lines) > 0 {
		coupon, err = loadCoupon(ctx, u.repos, userID, code, pricing.Subtotal(lines), u.opts.Now(), false)
		switch {
		case err == nil:
			preview.CouponCode = coupon.Code
		case domainErrors.IsBusinessRule(err):
			preview.CouponErr = err
		default:
			return nil, err
		}
	}
	preview.Totals = u.calc.ComputeWithDiscount(lines, coupon)
	return preview, nil
}

// Checkout places an order for the cart. Stock, coupon usage, the order and
// its items are written in one transaction or not at all. A serialization
// conflict reruns the transaction once; identifier clashes are regenerated
// a bounded number of times.
func (u *CheckoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "usecase.Checkout", trace.WithAttributes(attribute.Int64("user.id", req.UserID)))
	defer func() {
		endSpan(span, err)
		if err != nil {
			u.metrics.CheckoutFailed(checkoutFailureReason(err))
		}
	}()

	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	if req.Cart.IsEmpty() {
		return nil, domainErrors.ErrEmptyCart
	}
	for _, qty := range req.Cart.Items {
		if qty < 1 {
			return nil, domainErrors.ErrInvalidQuantity
		}
	}

	conflicts, collisions := 0, 0
	for {
		order, err = u.place(ctx, req, method, u.opts.Now())
		switch {
		case err == nil:
			span.SetAttributes(attribute.String("order.number", order.Number))
			u.metrics.CheckoutCompleted()
			u.logger.InfoContext(ctx, "order placed",
				slog.Int64("user_id", req.UserID),
				slog.String("order_number", order.Number),
				slog.String("total", order.Total.StringFixed(2)),
				slog.Int("items", len(order.Items)),
			)
			return order, nil
		case errors.Is(err, domainErrors.ErrConflict) && conflicts < maxConflictRetries:
			conflicts++
			u.logger.WarnContext(ctx, "checkout conflict, retrying", slog.Int64("user_id", req.UserID), slog.Any("error", err))
		case errors.Is(err, domainErrors.ErrDuplicateIdentifier):
			collisions++
			if collisions >= maxIdentifierAttempts {
				u.logger.ErrorContext(ctx, "order identifiers keep colliding", slog.Int("attempts", collisions))
				return nil, fmt.Errorf("%w: %d identifier collisions", domainErrors.ErrOrderCreationFailed, collisions)
			}
		default:
			return nil, err
		}
	}
}

func (u *CheckoutUseCase) place(ctx context.Context, req CheckoutRequest, method model.PaymentMethod, now time.Time) (*model.Order, error) {
	var placed *model.Order
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		lines, err := u.ledger.PriceCart(ctx, repos.Products(), req.Cart)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domainErrors.ErrEmptyCart
		}

		address, err := resolveAddress(ctx, repos.Addresses(), req.UserID, req.AddressID)
		if err != nil {
			return err
		}

		var coupon *model.Coupon
		if code := model.CanonicalCouponCode(req.CouponCode); code != "" {
			if coupon, err = loadCoupon(ctx, repos, req.UserID, code, pricing.Subtotal(lines), now, true); err != nil {
				return err
			}
		}

		order := &model.Order{
			UserID:            req.UserID,
			Number:            u.ids.OrderNumber(now),
			Status:            model.OrderStatusPlaced,
			PaymentStatus:     model.PaymentStatusPending,
			PaymentMethod:     method,
			Totals:            u.calc.ComputeWithDiscount(lines, coupon),
			ShippingAddress:   address.Format(),
			Notes:             strings.TrimSpace(req.Notes),
			EstimatedDelivery: now.Add(u.opts.DeliveryEstimate),
			CreatedAt:         now,
		}
		if coupon != nil {
			order.CouponCode = coupon.Code
		}
		if u.opts.TrackingAtCheckout {
			order.TrackingCode = u.ids.TrackingCode()
		}

		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}
		for _, line := range lines {
			if err := u.ledger.Decrement(ctx, repos, order.ID, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, err)
			}
			item, err := repos.Orders().AddItem(ctx, order.ID, line)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}
		if coupon != nil {
			if err := repos.Coupons().IncrementUsage(ctx, coupon.ID); err != nil {
				return err
			}
		}
		if err := appendEvent(ctx, repos, order, model.EventOrderPlaced, now); err != nil {
			return err
		}

		placed = order
		return nil
	})
	return placed, err
}

func resolveAddress(ctx context.Context, addresses repository.AddressRepository, userID, addressID int64) (*model.Address, error) {
	var (
		address *model.Address
		err     error
	)
	if addressID != 0 {
		address, err = addresses.GetForUser(ctx, userID, addressID)
	} else {
		address, err = addresses.GetDefault(ctx, userID)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.ErrNoShippingAddress
	}
	return address, err
}

// loadCoupon fetches a coupon by canonical code and checks it against
// subtotal, then against the per-user limit when userID is known.
func loadCoupon(ctx context.Context, repos repository.Factory, userID int64, code string, subtotal decimal.Decimal, now time.Time, lock bool) (*model.Coupon, error) {
	var (
		coupon *model.Coupon
		err    error
	)
	if lock {
		coupon, err = repos.Coupons().GetByCodeForUpdate(ctx, code)
	} else {
		coupon, err = repos.Coupons().GetByCode(ctx, code)
	}
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.NewCouponError(domainErrors.ErrCouponNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := pricing.ValidateCoupon(coupon, subtotal, now); err != nil {
		return nil, err
	}

	if userID != 0 && coupon.UserLimit != nil {
		used, err := repos.Orders().CountCouponUses(ctx, userID, coupon.Code)
		if err != nil {
			return nil, err
		}
		if used >= *coupon.UserLimit {
			return nil, domainErrors.NewCouponError(domainErrors.ErrCouponUserLimitReached)
		}
	}
	return coupon, nil
}

func checkoutFailureReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domainErrors.ErrNoShippingAddress):
		return "no_address"
	case errors.Is(err, domainErrors.ErrConflict):
		return "conflict"
	case errors.Is(err, domainErrors.ErrOrderCreationFailed):
		return "identifier_collision"
	case errors.Is(err, domainErrors.ErrInvalidPaymentMethod), errors.Is(err, domainErrors.ErrInvalidQuantity):
		return "invalid"
	}
	var couponErr *domainErrors.CouponError
	if errors.As(err, &couponErr) {
		return "coupon"
	}
	return "error"
}
