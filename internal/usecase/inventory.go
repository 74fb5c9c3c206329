package usecase

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// InventoryLedger owns stock counters and their movement trail. Every method
// works on the repositories it is given, so callers decide the transaction.
type InventoryLedger struct{}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// ReserveQuantity clamps requested to the stock that can be sold right now.
// A request below one counts as one.
func ReserveQuantity(p *model.Product, requested int) (int, error) {
	if p == nil || !p.Available() {
		return 0, domainErrors.ErrProductUnavailable
	}
	if requested < 1 {
		requested = 1
	}
	return min(requested, p.Stock), nil
}

// PriceCart turns cart into purchasable lines ordered by product id. Products
// that are missing, inactive or sold out are dropped; quantities are clamped.
func (l *InventoryLedger) PriceCart(ctx context.Context, products repository.ProductRepository, cart model.Cart) ([]model.LineItem, error) {
	ids := cart.ProductIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	catalog, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}

	lines := make([]model.LineItem, 0, len(ids))
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			continue
		}
		qty, err := ReserveQuantity(&p, cart.Items[id])
		if err != nil {
			continue
		}
		lines = append(lines, model.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			UnitPrice:   p.Price,
			Quantity:    qty,
		})
	}
	return lines, nil
}

// Decrement takes qty units of a product for an order. Nothing changes when
// stock is short, and ErrInsufficientStock is returned.
func (l *InventoryLedger) Decrement(ctx context.Context, repos repository.Factory, orderID, productID int64, qty int) error {
	if qty < 1 {
		return domainErrors.ErrInvalidQuantity
	}
	if err := repos.Inventory().Decrement(ctx, productID, qty); err != nil {
		return err
	}
	_, err := repos.Movements().Record(ctx, model.StockMovement{
		ProductID: productID,
		OrderID:   orderID,
		Delta:     -qty,
		Reason:    model.MovementCheckout,
	})
	return err
}

// Restore returns the items of order to stock once per order. The result
// reports whether stock changed.
func (l *InventoryLedger) Restore(ctx context.Context, repos repository.Factory, order *model.Order, reason model.MovementReason) (bool, error) {
	movements, err := repos.Movements().ListByOrder(ctx, order.ID)
	if err != nil {
		return false, err
	}
	for _, m := range movements {
		if m.Delta > 0 {
			return false, nil
		}
	}

	restored := false
	for _, item := range order.Items {
		inserted, err := repos.Movements().Record(ctx, model.StockMovement{
			ProductID: item.ProductID,
			OrderID:   order.ID,
			Delta:     item.Quantity,
			Reason:    reason,
		})
		if err != nil {
			return false, err
		}
		if !inserted {
			continue
		}
		if err := repos.Inventory().Restore(ctx, item.ProductID, item.Quantity); err != nil {
			return false, fmt.Errorf("restore product %d: %w", item.ProductID, err)
		}
		restored = true
	}
	return restored, nil
}
