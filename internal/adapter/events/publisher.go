// Package events delivers order outbox events to subscribers.
package events

import (
	"context"
	"log/slog"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Publisher hands an order event to the message transport.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
	Close() error
}

// LogPublisher writes events to the application log. It is used when no
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	p.logger.InfoContext(ctx, "order event",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
		slog.String("order_number", event.OrderNumber),
		slog.String("payload", string(event.Payload)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
