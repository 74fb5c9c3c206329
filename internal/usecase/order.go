package usecase

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderUseCase serves order reads.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(repos repository.Factory) *OrderUseCase {
	return &OrderUseCase{orders: repos.Orders()}
}

// Get returns the order with its items. Orders of other customers are
// reported as missing unless actor is staff.
func (u *OrderUseCase) Get(ctx context.Context, id int64, actor model.Actor) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListByUser returns the customer's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// List returns all orders for staff, filtered by status when rawStatus is set.
func (u *OrderUseCase) List(ctx context.Context, rawStatus string, actor model.Actor) ([]model.Order, error) {
	if !actor.Admin {
		return nil, domainErrors.ErrForbidden
	}
	var status model.OrderStatus
	if rawStatus != "" {
		var err error
		if status, err = model.ParseOrderStatus(rawStatus); err != nil {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrInvalidStatus, err.Error())
		}
	}
	return u.orders.List(ctx, status)
}
