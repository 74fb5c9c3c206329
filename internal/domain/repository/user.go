package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AddressRepository stores shipping addresses.
type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (*model.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
	// GetForUser returns the address only when it belongs to userID.
	GetForUser(ctx context.Context, userID, id int64) (*model.Address, error)
	// GetDefault returns the default address, or the oldest one when none is flagged.
	GetDefault(ctx context.Context, userID int64) (*model.Address, error)
}
