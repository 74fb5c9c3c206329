package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// querier is the statement surface shared by the pool and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// checkoutTxOptions gives every unit of work a consistent snapshot.
var checkoutTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	repos
	pool   pgxPool
	logger *slog.Logger
}

// repos builds repositories over a pool or a transaction.
type repos struct {
	q querier
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := newPoolStorage(pool, logger)
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

func newPoolStorage(pool pgxPool, logger *slog.Logger) *Storage {
	return &Storage{repos: repos{q: pool}, pool: pool, logger: logger}
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (r repos) Users() repository.UserRepository {
	return &userRepository{q: r.q}
}

func (r repos) Addresses() repository.AddressRepository {
	return &addressRepository{q: r.q}
}

func (r repos) Products() repository.ProductRepository {
	return &productRepository{q: r.q}
}

func (r repos) Inventory() repository.InventoryRepository {
	return &inventoryRepository{q: r.q}
}

func (r repos) Movements() repository.MovementRepository {
	return &movementRepository{q: r.q}
}

func (r repos) Coupons() repository.CouponRepository {
	return &couponRepository{q: r.q}
}

func (r repos) Orders() repository.OrderRepository {
	return &orderRepository{q: r.q}
}

func (r repos) Events() repository.EventRepository {
	return &eventRepository{q: r.q}
}

// WithinTransaction runs fn with repositories bound to one repeatable read
// transaction. Serialization failures and deadlocks surface as ErrConflict.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, checkoutTxOptions)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.WarnContext(ctx, "rollback failed", slog.Any("error", rbErr))
			}
		} else {
			err = tx.Commit(ctx)
		}
		err = conflictError(err)
	}()

	err = fn(ctx, repos{q: tx})
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected) {
		return fmt.Errorf("%w: %s", domainErrors.ErrConflict, pgErr.Message)
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
