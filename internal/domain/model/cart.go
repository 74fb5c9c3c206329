package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LineItem is a priced product reference within a cart or order.
type LineItem struct {
	ProductID   int64
	ProductName string
	ProductSKU  string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Amount returns UnitPrice multiplied by Quantity.
func (l LineItem) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart maps product identifiers to desired quantities. It is held by the
// session layer and passed around by value.
type Cart struct {
	Items      map[int64]int `json:"items"`
	CouponCode string        `json:"coupon_code,omitempty"`
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{Items: make(map[int64]int)}
}

// IsEmpty reports whether the cart holds no products.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs returns product identifiers in ascending order.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	cp := Cart{Items: make(map[int64]int, len(c.Items)), CouponCode: c.CouponCode}
	for id, qty := range c.Items {
		cp.Items[id] = qty
	}
	return cp
}
