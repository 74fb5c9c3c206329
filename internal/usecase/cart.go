package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polkiloo/storefront/internal/cart"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pricing"
)

// PlaceOrderInput carries checkout details that are not part of the cart.
type PlaceOrderInput struct {
	AddressID     int64
	PaymentMethod string
	Notes         string
}

// CartUseCase edits session carts and turns them into orders.
type CartUseCase struct {
	store    *cart.Store
	products repository.ProductRepository
	coupons  *CouponUseCase
	checkout *CheckoutUseCase
	logger   *slog.Logger
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(
	store *cart.Store,
	repos repository.Factory,
	coupons *CouponUseCase,
	checkout *CheckoutUseCase,
	logger *slog.Logger,
) *CartUseCase {
	return &CartUseCase{
		store:    store,
		products: repos.Products(),
		coupons:  coupons,
		checkout: checkout,
		logger:   logger,
	}
}

// Get prices the user's current cart.
func (u *CartUseCase) Get(ctx context.Context, userID int64) (*CartPreview, error) {
	c, err := u.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.checkout.Preview(ctx, userID, c)
}

// AddItem adds qty units of a product, clamped to the stock on hand.
func (u *CartUseCase) AddItem(ctx context.Context, userID, productID int64, qty int) (*CartPreview, error) {
	if qty < 1 {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return u.edit(ctx, userID, func(c *model.Cart) error {
		allowed, err := u.reserve(ctx, productID, c.Items[productID]+qty)
		if err != nil {
			return err
		}
		c.Items[productID] = allowed
		return nil
	})
}

// UpdateItem sets the quantity of a product already in the cart.
func (u *CartUseCase) UpdateItem(ctx context.Context, userID, productID int64, qty int) (*CartPreview, error) {
	if qty < 1 {
		return nil, domainErrors.ErrInvalidQuantity
	}
	return u.edit(ctx, userID, func(c *model.Cart) error {
		if _, ok := c.Items[productID]; !ok {
			return domainErrors.ErrNotFound
		}
		allowed, err := u.reserve(ctx, productID, qty)
		if err != nil {
			return err
		}
		c.Items[productID] = allowed
		return nil
	})
}

// RemoveItem drops a product from the cart.
func (u *CartUseCase) RemoveItem(ctx context.Context, userID, productID int64) (*CartPreview, error) {
	return u.edit(ctx, userID, func(c *model.Cart) error {
		delete(c.Items, productID)
		return nil
	})
}

// ApplyCoupon validates code against the cart subtotal and stores it on the
// cart. The coupon is checked again at checkout.
func (u *CartUseCase) ApplyCoupon(ctx context.Context, userID int64, code string) (*CartPreview, error) {
	return u.edit(ctx, userID, func(c *model.Cart) error {
		lines, err := u.checkout.ledger.PriceCart(ctx, u.products, *c)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domainErrors.ErrEmptyCart
		}
		coupon, err := u.coupons.Validate(ctx, userID, code, pricing.Subtotal(lines))
		if err != nil {
			return err
		}
		c.CouponCode = coupon.Code
		return nil
	})
}

// RemoveCoupon clears the applied coupon.
func (u *CartUseCase) RemoveCoupon(ctx context.Context, userID int64) (*CartPreview, error) {
	return u.edit(ctx, userID, func(c *model.Cart) error {
		c.CouponCode = ""
		return nil
	})
}

// Checkout places an order for the stored cart and empties it.
func (u *CartUseCase) Checkout(ctx context.Context, userID int64, in PlaceOrderInput) (*model.Order, error) {
	c, err := u.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := u.checkout.Checkout(ctx, CheckoutRequest{
		UserID:        userID,
		Cart:          c,
		CouponCode:    c.CouponCode,
		AddressID:     in.AddressID,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := u.store.Clear(ctx, userID); err != nil {
		u.logger.WarnContext(ctx, "failed to clear cart after checkout",
			slog.Int64("user_id", userID),
			slog.String("order_number", order.Number),
			slog.Any("error", err),
		)
	}
	return order, nil
}

func (u *CartUseCase) edit(ctx context.Context, userID int64, fn func(c *model.Cart) error) (*CartPreview, error) {
	c, err := u.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(&c); err != nil {
		return nil, err
	}
	if err := u.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return u.checkout.Preview(ctx, userID, c)
}

func (u *CartUseCase) reserve(ctx context.Context, productID int64, requested int) (int, error) {
	product, err := u.products.GetByID(ctx, productID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return 0, domainErrors.ErrProductUnavailable
	}
	if err != nil {
		return 0, err
	}
	return ReserveQuantity(product, requested)
}
