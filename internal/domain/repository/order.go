package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts order header and fills generated fields. A clash on the
	// order number or tracking code yields ErrDuplicateIdentifier.
	Create(ctx context.Context, order *model.Order) error
	AddItem(ctx context.Context, orderID int64, item model.LineItem) (*model.OrderItem, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetByIDForUpdate locks the order row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error)
	GetByNumberForUpdate(ctx context.Context, number string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	// List returns all orders, optionally filtered by status when status is not empty.
	List(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	// Update persists status, payment and fulfillment fields.
	Update(ctx context.Context, order *model.Order) error
	CountCouponUses(ctx context.Context, userID int64, code string) (int, error)
}
