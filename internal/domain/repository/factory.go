package repository

import "context"

// Factory describes access to different domain repositories. Repositories
// obtained from a transaction-scoped factory share that transaction.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Orders() OrderRepository
	Addresses() AddressRepository
	Movements() MovementRepository
	Events() EventRepository
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Factory) error) error
}
