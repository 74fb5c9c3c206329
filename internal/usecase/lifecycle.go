package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
)

// LifecycleOptions tunes status management.
type LifecycleOptions struct {
	Mode model.TransitionMode
	Now  func() time.Time
}

// OrderLifecycleUseCase applies status and payment transitions to placed
// orders. Every transition re-reads the order under a row lock.
type OrderLifecycleUseCase struct {
	tx      repository.Transactor
	ledger  *InventoryLedger
	ids     IdentifierGenerator
	machine model.StatusMachine
	now     func() time.Time
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewOrderLifecycleUseCase constructs OrderLifecycleUseCase.
func NewOrderLifecycleUseCase(
	tx repository.Transactor,
	ledger *InventoryLedger,
	ids IdentifierGenerator,
	opts LifecycleOptions,
	collector *metrics.Collector,
	logger *slog.Logger,
) *OrderLifecycleUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderLifecycleUseCase{
		tx:      tx,
		ledger:  ledger,
		ids:     ids,
		machine: model.NewStatusMachine(opts.Mode),
		now:     opts.Now,
		metrics: collector,
		logger:  logger,
	}
}

// Machine exposes the configured transition rules.
func (u *OrderLifecycleUseCase) Machine() model.StatusMachine {
	return u.machine
}

// Cancel cancels a placed or packed order on behalf of its owner or an
// admin and returns its items to stock.
func (u *OrderLifecycleUseCase) Cancel(ctx context.Context, orderID int64, actor model.Actor) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "usecase.Cancel", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	err = u.withinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		o, err := repos.Orders().GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o.UserID) || !o.Cancellable() {
			return domainErrors.ErrNotCancellable
		}

		now := u.now()
		if err := u.cancel(ctx, repos, o, now); err != nil {
			return err
		}
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		if err := appendEvent(ctx, repos, o, model.EventOrderCancelled, now); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.StatusChanged(string(model.OrderStatusCancelled))
	u.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_number", order.Number),
		slog.Int64("actor_id", actor.UserID),
		slog.String("payment_status", string(order.PaymentStatus)),
	)
	return order, nil
}

func (u *OrderLifecycleUseCase) cancel(ctx context.Context, repos repository.Factory, o *model.Order, now time.Time) error {
	o.Status = model.OrderStatusCancelled
	if o.PaymentStatus == model.PaymentStatusPaid {
		o.PaymentStatus = model.PaymentStatusRefunded
	} else {
		o.PaymentStatus = model.PaymentStatusCancelled
	}
	o.UpdatedAt = now
	_, err := u.ledger.Restore(ctx, repos, o, model.MovementCancellation)
	return err
}

// AdvanceStatus sets a new status chosen by an admin. Shipping assigns a
// tracking code when missing; delivery stamps the date and marks the order
// paid; cancellation and return put stock back once.
// Admin cancellation and return are not plain status edits: they restore
// stock and settle the payment status the same way Cancel does.
func (u *OrderLifecycleUseCase) AdvanceStatus(ctx context.Context, orderID int64, status string, actor model.Actor) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "usecase.AdvanceStatus",
		trace.WithAttributes(attribute.Int64("order.id", orderID), attribute.String("order.status", status)))
	defer func() { endSpan(span, err) }()

	if !actor.Admin {
		return nil, domainErrors.ErrForbidden
	}
	to, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, status)
	}

	var changed bool
	for attempt := 1; ; attempt++ {
		order, changed, err = u.advance(ctx, orderID, to)
		if !errors.Is(err, domainErrors.ErrDuplicateIdentifier) || attempt >= maxIdentifierAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if changed {
		u.metrics.StatusChanged(string(to))
		u.logger.InfoContext(ctx, "order status changed",
			slog.String("order_number", order.Number),
			slog.String("status", string(to)),
			slog.Int64("actor_id", actor.UserID),
		)
	}
	return order, nil
}

func (u *OrderLifecycleUseCase) advance(ctx context.Context, orderID int64, to model.OrderStatus) (*model.Order, bool, error) {
	var (
		order   *model.Order
		changed bool
	)
	err := u.withinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		o, err := repos.Orders().GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		order, changed = o, false
		if o.Status == to {
			return nil
		}
		if !u.machine.CanTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, o.Status, to)
		}

		now := u.now()
		event := model.EventOrderStatusChanged
		switch to {
		case model.OrderStatusCancelled:
			if err := u.cancel(ctx, repos, o, now); err != nil {
				return err
			}
			event = model.EventOrderCancelled
		case model.OrderStatusReturned:
			if _, err := u.ledger.Restore(ctx, repos, o, model.MovementReturn); err != nil {
				return err
			}
		case model.OrderStatusShipped:
			if o.TrackingCode == "" {
				o.TrackingCode = u.ids.TrackingCode()
			}
		case model.OrderStatusDelivered:
			delivered := now
			o.DeliveredAt = &delivered
			o.PaymentStatus = model.PaymentStatusPaid
		}
		o.Status = to
		o.UpdatedAt = now

		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		if err := appendEvent(ctx, repos, o, event, now); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return order, changed, err
}

// ApplyPayment records a gateway notification. A success marks the order
// paid and stores the payment reference; anything else leaves it unchanged.
// Repeated notifications for a paid order are no-ops. The result reports
// whether the order changed.
func (u *OrderLifecycleUseCase) ApplyPayment(ctx context.Context, n model.PaymentNotification) (applied bool, err error) {
	ctx, span := tracer.Start(ctx, "usecase.ApplyPayment", trace.WithAttributes(
		attribute.String("order.number", n.OrderNumber),
		attribute.String("payment.outcome", string(n.Outcome)),
	))
	defer func() { endSpan(span, err) }()

	var order *model.Order
	err = u.withinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		applied = false
		o, err := repos.Orders().GetByNumberForUpdate(ctx, n.OrderNumber)
		if err != nil {
			return err
		}
		if n.Outcome != model.PaymentOutcomeSuccess || o.PaymentStatus == model.PaymentStatusPaid {
			return nil
		}

		now := u.now()
		o.PaymentStatus = model.PaymentStatusPaid
		o.PaymentID = n.PaymentReference
		o.UpdatedAt = now
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		if err := appendEvent(ctx, repos, o, model.EventOrderPaid, now); err != nil {
			return err
		}
		order, applied = o, true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		u.logger.InfoContext(ctx, "payment applied",
			slog.String("order_number", order.Number),
			slog.String("payment_reference", n.PaymentReference),
		)
	}
	return applied, nil
}

// withinTransaction reruns fn once when the store reports a serialization conflict.
func (u *OrderLifecycleUseCase) withinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if err = u.tx.WithinTransaction(ctx, fn); !errors.Is(err, domainErrors.ErrConflict) {
			return err
		}
		u.logger.WarnContext(ctx, "order transition conflict", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return err
}
