package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry together with its inventory record.
type Product struct {
	ID        int64
	SKU       string
	Name      string
	Price     decimal.Decimal
	Stock     int
	SoldCount int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available reports whether at least one unit can be sold.
func (p *Product) Available() bool {
	return p.Active && p.Stock > 0
}

// MovementReason explains a stock change.
type MovementReason string

const (
	MovementCheckout     MovementReason = "checkout"
	MovementCancellation MovementReason = "cancellation"
	MovementReturn       MovementReason = "return"
)

// StockMovement is an audit record of an inventory change caused by an order.
type StockMovement struct {
	ID        int64
	ProductID int64
	OrderID   int64
	Delta     int
	Reason    MovementReason
	CreatedAt time.Time
}
