package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// AddressInput is a shipping address entered by a customer.
type AddressInput struct {
	Name    string `validate:"required,max=100"`
	Mobile  string `validate:"required,max=20"`
	Line1   string `validate:"required,max=255"`
	Line2   string `validate:"max=255"`
	City    string `validate:"required,max=100"`
	State   string `validate:"required,max=100"`
	Pincode string `validate:"required,max=12"`
	Country string `validate:"required,max=100"`
	Default bool
}

// AddressUseCase manages saved shipping addresses.
type AddressUseCase struct {
	repos repository.Factory
	tx    repository.Transactor
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(repos repository.Factory, tx repository.Transactor) *AddressUseCase {
	return &AddressUseCase{repos: repos, tx: tx}
}

// Create stores a new address. A default address replaces the previous
// default in the same transaction.
func (u *AddressUseCase) Create(ctx context.Context, userID int64, in AddressInput) (*model.Address, error) {
	for _, field := range []*string{&in.Name, &in.Mobile, &in.Line1, &in.Line2, &in.City, &in.State, &in.Pincode, &in.Country} {
		*field = strings.TrimSpace(*field)
	}
	if err := validateInput(domainErrors.ErrInvalidAddress, in); err != nil {
		return nil, err
	}

	var created *model.Address
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		var err error
		created, err = repos.Addresses().Create(ctx, model.Address{
			UserID:  userID,
			Name:    in.Name,
			Mobile:  in.Mobile,
			Line1:   in.Line1,
			Line2:   in.Line2,
			City:    in.City,
			State:   in.State,
			Pincode: in.Pincode,
			Country: in.Country,
			Default: in.Default,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns the user's addresses, default first.
func (u *AddressUseCase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	return u.repos.Addresses().ListByUser(ctx, userID)
}
