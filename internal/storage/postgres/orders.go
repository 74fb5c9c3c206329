package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, user_id, number, status, payment_status, payment_method, COALESCE(payment_id, ''),
                      subtotal, tax, shipping, discount, total, COALESCE(coupon_code, ''), COALESCE(tracking_code, ''),
                      shipping_address, notes, estimated_delivery, delivered_at, created_at, updated_at`

func scanOrder(row scanner) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Number, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentID,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total, &o.CouponCode, &o.TrackingCode,
		&o.ShippingAddress, &o.Notes, &o.EstimatedDelivery, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (user_id, number, status, payment_status, payment_method, payment_id,
                                       subtotal, tax, shipping, discount, total, coupon_code, tracking_code,
                                       shipping_address, notes, estimated_delivery, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
                   RETURNING id`
	err := r.q.QueryRow(ctx, query,
		order.UserID, order.Number, order.Status, order.PaymentStatus, order.PaymentMethod, nullString(order.PaymentID),
		order.Subtotal, order.Tax, order.Shipping, order.Discount, order.Total,
		nullString(order.CouponCode), nullString(order.TrackingCode),
		order.ShippingAddress, order.Notes, order.EstimatedDelivery, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrDuplicateIdentifier
		}
		return err
	}
	order.UpdatedAt = order.CreatedAt
	return nil
}

func (r *orderRepository) AddItem(ctx context.Context, orderID int64, item model.LineItem) (*model.OrderItem, error) {
	const query = `INSERT INTO order_items (order_id, product_id, product_name, product_sku, unit_price, quantity)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   RETURNING id`
	result := model.OrderItem{OrderID: orderID, LineItem: item}
	err := r.q.QueryRow(ctx, query, orderID, item.ProductID, item.ProductName, item.ProductSKU, item.UnitPrice, item.Quantity).
		Scan(&result.ID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getWithItems(ctx, query, id)
}

func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
	return r.getWithItems(ctx, query, id)
}

func (r *orderRepository) GetByNumberForUpdate(ctx context.Context, number string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE number=$1 FOR UPDATE`
	return r.getWithItems(ctx, query, number)
}

func (r *orderRepository) getWithItems(ctx context.Context, query string, arg any) (*model.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, product_name, product_sku, unit_price, quantity
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) List(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if status == "" {
		const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
		return r.list(ctx, query)
	}
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, status)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders
                   SET status=$2, payment_status=$3, payment_id=$4, tracking_code=$5, delivered_at=$6, updated_at=$7
                   WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, order.ID, order.Status, order.PaymentStatus,
		nullString(order.PaymentID), nullString(order.TrackingCode), order.DeliveredAt, order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrDuplicateIdentifier
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) CountCouponUses(ctx context.Context, userID int64, code string) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE user_id=$1 AND coupon_code=$2`
	var n int
	if err := r.q.QueryRow(ctx, query, userID, code).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
