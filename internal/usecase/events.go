package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
)

var tracer = otel.Tracer("github.com/polkiloo/storefront/internal/usecase")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// appendEvent stores an outbox event in the transaction that changed order.
func appendEvent(ctx context.Context, repos repository.Factory, order *model.Order, typ model.EventType, now time.Time) error {
	event, err := model.NewOrderEvent(order, typ, now)
	if err != nil {
		return fmt.Errorf("build %s event: %w", typ, err)
	}
	if err := repos.Events().Append(ctx, event); err != nil {
		return fmt.Errorf("append %s event: %w", typ, err)
	}
	return nil
}

// EventUseCase drains the order event outbox into a publisher.
type EventUseCase struct {
	outbox    repository.EventRepository
	publisher events.Publisher
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewEventUseCase constructs EventUseCase.
func NewEventUseCase(repos repository.Factory, publisher events.Publisher, collector *metrics.Collector, logger *slog.Logger) *EventUseCase {
	return &EventUseCase{outbox: repos.Events(), publisher: publisher, metrics: collector, logger: logger}
}

// PendingEvents claims up to limit events for publishing.
func (u *EventUseCase) PendingEvents(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	return u.outbox.ClaimBatch(ctx, limit)
}

// Dispatch publishes a claimed event. On failure the event goes back to the
// queue for the next poll.
func (u *EventUseCase) Dispatch(ctx context.Context, event model.OrderEvent) error {
	if err := u.publisher.Publish(ctx, event); err != nil {
		u.metrics.EventPublished(false)
		if releaseErr := u.outbox.Release(ctx, event.ID); releaseErr != nil {
			u.logger.ErrorContext(ctx, "failed to release event", slog.String("event_id", event.EventID), slog.Any("error", releaseErr))
		}
		return err
	}
	u.metrics.EventPublished(true)
	return u.outbox.MarkPublished(ctx, event.ID)
}
