package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestEventDispatchMarksPublished(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 5, 1)
	f.placeOrder(t, 6, 1)
	ctx := context.Background()

	batch, err := f.events.PendingEvents(ctx, 10)
	if err != nil || len(batch) != 2 {
		t.Fatalf("claim: %d %v", len(batch), err)
	}
	if again, _ := f.events.PendingEvents(ctx, 10); len(again) != 0 {
		t.Fatalf("claimed events must not be handed out twice")
	}
	for _, e := range batch {
		if err := f.events.Dispatch(ctx, e); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}

	if len(f.publisher.Published()) != 2 {
		t.Fatalf("expected 2 published events")
	}
	for _, e := range f.store.AllEvents() {
		if e.Status != model.EventStatusPublished {
			t.Fatalf("event %d left in %s", e.ID, e.Status)
		}
	}
}

func TestEventDispatchReleasesOnFailure(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t, 5, 1)
	ctx := context.Background()
	brokerDown := errors.New("broker down")
	f.publisher.PublishFn = func(context.Context, model.OrderEvent) error { return brokerDown }

	batch, _ := f.events.PendingEvents(ctx, 1)
	if len(batch) != 1 {
		t.Fatalf("expected one claimed event")
	}
	if err := f.events.Dispatch(ctx, batch[0]); !errors.Is(err, brokerDown) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if got := f.store.AllEvents()[0]; got.Status != model.EventStatusPending || got.Attempts != 1 {
		t.Fatalf("expected event back in queue, got %s attempts %d", got.Status, got.Attempts)
	}

	f.publisher.PublishFn = nil
	batch, _ = f.events.PendingEvents(ctx, 1)
	if len(batch) != 1 || f.events.Dispatch(ctx, batch[0]) != nil {
		t.Fatalf("expected retry to publish")
	}
	if got := f.store.AllEvents()[0]; got.Status != model.EventStatusPublished || got.Attempts != 2 {
		t.Fatalf("unexpected final state %s attempts %d", got.Status, got.Attempts)
	}
}
