package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type userRepository struct {
	q querier
}

type addressRepository struct {
	q querier
}

const userColumns = `id, login, password_hash, is_admin, created_at`

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, is_admin, created_at`
	u := model.User{Login: login, PasswordHash: passwordHash}
	err := r.q.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.Admin, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.q.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Admin, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

const addressColumns = `id, user_id, name, mobile, line1, line2, city, state, pincode, country, is_default, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAddress(row scanner) (model.Address, error) {
	var a model.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Mobile, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.Pincode, &a.Country, &a.Default, &a.CreatedAt)
	return a, err
}

// Create stores the address. A new default address clears the flag on the
// user's other addresses; callers run both statements in one transaction.
func (r *addressRepository) Create(ctx context.Context, address model.Address) (*model.Address, error) {
	if address.Default {
		const clearDefault = `UPDATE addresses SET is_default=FALSE WHERE user_id=$1 AND is_default`
		if _, err := r.q.Exec(ctx, clearDefault, address.UserID); err != nil {
			return nil, err
		}
	}

	const query = `INSERT INTO addresses (user_id, name, mobile, line1, line2, city, state, pincode, country, is_default)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		address.UserID, address.Name, address.Mobile, address.Line1, address.Line2,
		address.City, address.State, address.Pincode, address.Country, address.Default,
	).Scan(&address.ID, &address.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id=$1 ORDER BY is_default DESC, created_at, id`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *addressRepository) GetForUser(ctx context.Context, userID, id int64) (*model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE id=$1 AND user_id=$2`
	a, err := scanAddress(r.q.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *addressRepository) GetDefault(ctx context.Context, userID int64) (*model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id=$1
                   ORDER BY is_default DESC, created_at, id LIMIT 1`
	a, err := scanAddress(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
