package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ProductInput describes a new catalog entry.
type ProductInput struct {
	SKU    string `validate:"required,max=64"`
	Name   string `validate:"required,max=255"`
	Price  decimal.Decimal
	Stock  int `validate:"gte=0"`
	Active bool
}

// ProductUpdate changes the sellable attributes of a product.
type ProductUpdate struct {
	Name   string `validate:"required,max=255"`
	Price  decimal.Decimal
	Active bool
}

// ProductUseCase is the thin admin side of the catalog.
type ProductUseCase struct {
	products repository.ProductRepository
}

// NewProductUseCase constructs ProductUseCase.
func NewProductUseCase(repos repository.Factory) *ProductUseCase {
	return &ProductUseCase{products: repos.Products()}
}

// Create adds a product with its initial stock.
func (u *ProductUseCase) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(domainErrors.ErrInvalidProduct, in); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	return u.products.Create(ctx, model.Product{
		SKU:    in.SKU,
		Name:   in.Name,
		Price:  in.Price,
		Stock:  in.Stock,
		Active: in.Active,
	})
}

// Update changes name, price and availability. Past orders keep their snapshots.
func (u *ProductUseCase) Update(ctx context.Context, id int64, in ProductUpdate) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(domainErrors.ErrInvalidProduct, in); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	return u.products.Update(ctx, model.Product{ID: id, Name: in.Name, Price: in.Price, Active: in.Active})
}

// Get returns a product by id.
func (u *ProductUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: negative price", domainErrors.ErrInvalidProduct)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimals", domainErrors.ErrInvalidProduct)
	}
	return nil
}
