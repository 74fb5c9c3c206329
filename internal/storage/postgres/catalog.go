package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type productRepository struct {
	q querier
}

type inventoryRepository struct {
	q querier
}

type movementRepository struct {
	q querier
}

type couponRepository struct {
	q querier
}

const productColumns = `id, sku, name, price, stock, sold_count, active, created_at, updated_at`

func scanProduct(row scanner) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.SoldCount, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// --- ProductRepository implementation ---

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	const query = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	const query = `INSERT INTO products (sku, name, price, stock, active) VALUES ($1, $2, $3, $4, $5)
                   RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, product.SKU, product.Name, product.Price, product.Stock, product.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	const query = `UPDATE products SET name=$2, price=$3, active=$4, updated_at=NOW() WHERE id=$1
                   RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, product.ID, product.Name, product.Price, product.Active))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// --- InventoryRepository implementation ---

func (r *inventoryRepository) Decrement(ctx context.Context, productID int64, qty int) error {
	const query = `UPDATE products
                   SET stock = stock - $2, sold_count = sold_count + $2, updated_at = NOW()
                   WHERE id = $1 AND stock >= $2`
	tag, err := r.q.Exec(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInsufficientStock
	}
	return nil
}

func (r *inventoryRepository) Restore(ctx context.Context, productID int64, qty int) error {
	const query = `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- MovementRepository implementation ---

func (r *movementRepository) Record(ctx context.Context, movement model.StockMovement) (bool, error) {
	const query = `INSERT INTO stock_movements (product_id, order_id, delta, reason) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (order_id, product_id, reason) DO NOTHING
                   RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query, movement.ProductID, movement.OrderID, movement.Delta, movement.Reason).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *movementRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.StockMovement, error) {
	const query = `SELECT id, product_id, order_id, delta, reason, created_at
                   FROM stock_movements WHERE order_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.OrderID, &m.Delta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- CouponRepository implementation ---

const couponColumns = `id, code, discount_type, discount_value, min_purchase, max_discount,
                       usage_limit, used_count, user_limit, valid_from, valid_until, active, created_at`

func scanCoupon(row scanner) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinPurchase, &c.MaxDiscount,
		&c.UsageLimit, &c.UsedCount, &c.UserLimit, &c.ValidFrom, &c.ValidUntil, &c.Active, &c.CreatedAt)
	return c, err
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1`
	c, err := scanCoupon(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *couponRepository) GetByCodeForUpdate(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE code=$1 FOR UPDATE`
	c, err := scanCoupon(r.q.QueryRow(ctx, query, code))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, id int64) error {
	const query = `UPDATE coupons SET used_count = used_count + 1
                   WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.NewCouponError(domainErrors.ErrCouponUsageLimitReached)
	}
	return nil
}

func (r *couponRepository) Upsert(ctx context.Context, coupon model.Coupon) (*model.Coupon, error) {
	const query = `INSERT INTO coupons (code, discount_type, discount_value, min_purchase, max_discount,
                                        usage_limit, user_limit, valid_from, valid_until, active)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   ON CONFLICT (code) DO UPDATE SET
                       discount_type = EXCLUDED.discount_type,
                       discount_value = EXCLUDED.discount_value,
                       min_purchase = EXCLUDED.min_purchase,
                       max_discount = EXCLUDED.max_discount,
                       usage_limit = EXCLUDED.usage_limit,
                       user_limit = EXCLUDED.user_limit,
                       valid_from = EXCLUDED.valid_from,
                       valid_until = EXCLUDED.valid_until,
                       active = EXCLUDED.active
                   RETURNING ` + couponColumns
	c, err := scanCoupon(r.q.QueryRow(ctx, query,
		coupon.Code, coupon.DiscountType, coupon.DiscountValue, coupon.MinPurchase, coupon.MaxDiscount,
		coupon.UsageLimit, coupon.UserLimit, coupon.ValidFrom, coupon.ValidUntil, coupon.Active,
	))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM coupons WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
