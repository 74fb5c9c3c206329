package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository reads and maintains catalog entries.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetByIDs returns found products keyed by identifier. Missing ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	Create(ctx context.Context, product model.Product) (*model.Product, error)
	// Update changes name, price and active flag. Stock is owned by InventoryRepository.
	Update(ctx context.Context, product model.Product) (*model.Product, error)
}

// InventoryRepository mutates stock counters.
type InventoryRepository interface {
	// Decrement subtracts qty only when enough stock is left, otherwise
	// returns ErrInsufficientStock without changing anything.
	Decrement(ctx context.Context, productID int64, qty int) error
	Restore(ctx context.Context, productID int64, qty int) error
}

// MovementRepository keeps the stock movement audit trail.
type MovementRepository interface {
	// Record stores a movement and reports false when a movement with the same
	// order, product and reason already exists.
	Record(ctx context.Context, movement model.StockMovement) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.StockMovement, error)
}

// CouponRepository persists coupons and their usage counters.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	// GetByCodeForUpdate locks the coupon row until the transaction ends.
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Coupon, error)
	// IncrementUsage adds one use unless the usage limit is reached, in which
	// case ErrCouponUsageLimitReached is returned.
	IncrementUsage(ctx context.Context, id int64) error
	Upsert(ctx context.Context, coupon model.Coupon) (*model.Coupon, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]model.Coupon, error)
}

// EventRepository is the order event outbox.
type EventRepository interface {
	Append(ctx context.Context, event model.OrderEvent) error
	// ClaimBatch marks up to limit pending events as processing and returns them.
	ClaimBatch(ctx context.Context, limit int) ([]model.OrderEvent, error)
	MarkPublished(ctx context.Context, id int64) error
	// Release returns a claimed event to the pending queue.
	Release(ctx context.Context, id int64) error
}
