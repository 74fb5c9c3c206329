package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// EventFacade exposes the outbox operations required by the dispatcher.
type EventFacade interface {
	PendingEvents(ctx context.Context, limit int) ([]model.OrderEvent, error)
	DispatchEvent(ctx context.Context, event model.OrderEvent) error
}

// OutboxDispatcher polls the order event outbox and publishes claimed
// events with a pool of workers. Events left claimed on shutdown are picked
// up again once their claim goes stale.
type OutboxDispatcher struct {
	facade       EventFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.OrderEvent
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxDispatcher constructs the dispatcher worker pool.
func NewOutboxDispatcher(facade EventFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *OutboxDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &OutboxDispatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.OrderEvent, batchSize),
	}
}

// Start launches background publishing.
func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}

	d.wg.Add(1)
	go d.poll(runCtx)
}

// Stop cancels polling and waits for in-flight publishes to finish.
func (d *OutboxDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *OutboxDispatcher) poll(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.claimAndDispatch(ctx)
		}
	}
}

func (d *OutboxDispatcher) claimAndDispatch(ctx context.Context) {
	events, err := d.facade.PendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.ErrorContext(ctx, "claim outbox events failed", slog.String("error", err.Error()))
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case d.jobs <- event:
		}
	}
}

func (d *OutboxDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.jobs:
			d.handleEvent(ctx, event)
		}
	}
}

func (d *OutboxDispatcher) handleEvent(ctx context.Context, event model.OrderEvent) {
	if err := d.facade.DispatchEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "publish order event failed",
			slog.Int64("event_id", event.ID),
			slog.String("type", string(event.Type)),
			slog.String("order_number", event.OrderNumber),
			slog.String("error", err.Error()),
		)
	}
}
