package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/storefront/internal/cache"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/metrics"
)

// PaymentResult describes what a notification did.
type PaymentResult string

const (
	PaymentApplied   PaymentResult = "applied"
	PaymentIgnored   PaymentResult = "ignored"
	PaymentDuplicate PaymentResult = "duplicate"
)

// PaymentUseCase handles gateway notifications. Deliveries already seen are
// answered from the cache without touching the order.
type PaymentUseCase struct {
	lifecycle *OrderLifecycleUseCase
	seen      cache.Provider
	ttl       time.Duration
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(lifecycle *OrderLifecycleUseCase, seen cache.Provider, ttl time.Duration, collector *metrics.Collector, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{lifecycle: lifecycle, seen: seen, ttl: ttl, metrics: collector, logger: logger}
}

// HandleNotification applies n at most once per delivery.
func (u *PaymentUseCase) HandleNotification(ctx context.Context, n model.PaymentNotification) (result PaymentResult, err error) {
	defer func() {
		outcome := string(result)
		if err != nil {
			outcome = "error"
		}
		u.metrics.PaymentCallback(n.Source, outcome)
	}()

	n.OrderNumber = strings.TrimSpace(n.OrderNumber)
	if n.OrderNumber == "" {
		return "", fmt.Errorf("%w: missing order number", domainErrors.ErrInvalidNotification)
	}
	if n.Outcome != model.PaymentOutcomeSuccess && n.Outcome != model.PaymentOutcomeFailure {
		return "", fmt.Errorf("%w: unknown outcome %q", domainErrors.ErrInvalidNotification, n.Outcome)
	}

	key := cache.CallbackKey(n.Source, deliveryID(n))
	if _, err := u.seen.Get(ctx, key); err == nil {
		return PaymentDuplicate, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		u.logger.WarnContext(ctx, "callback cache lookup failed", slog.String("key", key), slog.Any("error", err))
	}

	applied, err := u.lifecycle.ApplyPayment(ctx, n)
	if err != nil {
		return "", err
	}

	if err := u.seen.Set(ctx, key, string(n.Outcome), u.ttl); err != nil {
		u.logger.WarnContext(ctx, "callback cache store failed", slog.String("key", key), slog.Any("error", err))
	}
	if applied {
		return PaymentApplied, nil
	}
	return PaymentIgnored, nil
}

func deliveryID(n model.PaymentNotification) string {
	if n.EventID != "" {
		return n.EventID
	}
	return n.OrderNumber + ":" + n.PaymentReference + ":" + string(n.Outcome)
}
