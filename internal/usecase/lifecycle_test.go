package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var admin = model.Actor{UserID: 99, Admin: true}

func countEvents(events []model.OrderEvent, typ model.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestCancelRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	order, p := f.placeOrder(t, 5, 3)
	owner := model.Actor{UserID: 5}

	cancelled, err := f.lifecycle.Cancel(context.Background(), order.ID, owner)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.OrderStatusCancelled || cancelled.PaymentStatus != model.PaymentStatusCancelled {
		t.Fatalf("unexpected state %s/%s", cancelled.Status, cancelled.PaymentStatus)
	}
	if got := f.store.Product(p.ID); got.Stock != 10 || got.SoldCount != 3 {
		t.Fatalf("expected stock restored, got stock %d sold %d", got.Stock, got.SoldCount)
	}

	if _, err := f.lifecycle.Cancel(context.Background(), order.ID, owner); !errors.Is(err, domainErrors.ErrNotCancellable) {
		t.Fatalf("expected second cancel to fail, got %v", err)
	}
	if f.store.Product(p.ID).Stock != 10 {
		t.Fatalf("stock restored twice")
	}
	if n := countEvents(f.store.AllEvents(), model.EventOrderCancelled); n != 1 {
		t.Fatalf("expected one cancelled event, got %d", n)
	}
}

func TestCancelRefundsPaidOrder(t *testing.T) {
	f := newFixture(t)
	order, _ := f.placeOrder(t, 5, 1)
	if _, err := f.lifecycle.ApplyPayment(context.Background(), model.PaymentNotification{OrderNumber: order.Number, Outcome: model.PaymentOutcomeSuccess}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	cancelled, err := f.lifecycle.Cancel(context.Background(), order.ID, admin)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.PaymentStatus != model.PaymentStatusRefunded {
		t.Fatalf("expected refund, got %s", cancelled.PaymentStatus)
	}
}

func TestCancelRejections(t *testing.T) {
	f := newFixture(t)
	order, _ := f.placeOrder(t, 5, 1)

	if _, err := f.lifecycle.Cancel(context.Background(), order.ID, model.Actor{UserID: 6}); !errors.Is(err, domainErrors.ErrNotCancellable) {
		t.Fatalf("expected stranger to be refused, got %v", err)
	}
	if _, err := f.lifecycle.Cancel(context.Background(), 12345, admin); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "shipped", admin); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := f.lifecycle.Cancel(context.Background(), order.ID, model.Actor{UserID: 5}); !errors.Is(err, domainErrors.ErrNotCancellable) {
		t.Fatalf("expected shipped order to be final for the customer, got %v", err)
	}
	if got := f.store.Order(order.ID); got.Status != model.OrderStatusShipped {
		t.Fatalf("refused cancel changed order to %s", got.Status)
	}
}

func TestAdvanceStatusSideEffects(t *testing.T) {
	f := newFixture(t, withoutTrackingAtCheckout())
	order, p := f.placeOrder(t, 5, 2)
	ctx := context.Background()

	packed, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "PACKED", admin)
	if err != nil || packed.Status != model.OrderStatusPacked || packed.TrackingCode != "" {
		t.Fatalf("pack: %+v %v", packed, err)
	}

	shipped, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "shipped", admin)
	if err != nil || shipped.TrackingCode == "" {
		t.Fatalf("expected tracking code on shipping: %+v %v", shipped, err)
	}
	tracking := shipped.TrackingCode

	delivered, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "delivered", admin)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.PaymentStatus != model.PaymentStatusPaid || delivered.DeliveredAt == nil || !delivered.DeliveredAt.Equal(fixedNow) {
		t.Fatalf("unexpected delivery state %+v", delivered)
	}
	if delivered.TrackingCode != tracking {
		t.Fatalf("tracking code changed")
	}

	for range 2 {
		if _, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "returned", admin); err != nil {
			t.Fatalf("return: %v", err)
		}
	}
	if got := f.store.Product(p.ID).Stock; got != 10 {
		t.Fatalf("expected stock back to 10, got %d", got)
	}
	returns := 0
	for _, m := range f.store.AllMovements() {
		if m.Reason == model.MovementReturn {
			returns++
		}
	}
	if returns != 1 {
		t.Fatalf("expected one return movement, got %d", returns)
	}
	if n := countEvents(f.store.AllEvents(), model.EventOrderStatusChanged); n != 4 {
		t.Fatalf("expected 4 status events, got %d", n)
	}
}

func TestAdvanceStatusCancelThenReturnRestoresOnce(t *testing.T) {
	f := newFixture(t)
	order, p := f.placeOrder(t, 5, 4)
	ctx := context.Background()

	cancelled, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "cancelled", admin)
	if err != nil || cancelled.PaymentStatus != model.PaymentStatusCancelled {
		t.Fatalf("cancel: %+v %v", cancelled, err)
	}
	if _, err := f.lifecycle.AdvanceStatus(ctx, order.ID, "returned", admin); err != nil {
		t.Fatalf("return: %v", err)
	}
	if got := f.store.Product(p.ID).Stock; got != 10 {
		t.Fatalf("expected single restore, stock %d", got)
	}
	if n := countEvents(f.store.AllEvents(), model.EventOrderCancelled); n != 1 {
		t.Fatalf("expected cancelled event, got %d", n)
	}
}

func TestAdvanceStatusSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	order, _ := f.placeOrder(t, 5, 1)
	before := len(f.store.AllEvents())

	got, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "placed", admin)
	if err != nil || got.Status != model.OrderStatusPlaced {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
	if len(f.store.AllEvents()) != before {
		t.Fatalf("no-op must not emit events")
	}
}

func TestAdvanceStatusStrictMode(t *testing.T) {
	f := newFixture(t, withMode(model.TransitionStrict))
	order, _ := f.placeOrder(t, 5, 1)

	if _, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "delivered", admin); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "packed", admin); err != nil {
		t.Fatalf("packed is allowed: %v", err)
	}
	if f.lifecycle.Machine().Mode() != model.TransitionStrict {
		t.Fatalf("unexpected mode")
	}
}

func TestAdvanceStatusRejections(t *testing.T) {
	f := newFixture(t)
	order, _ := f.placeOrder(t, 5, 1)

	if _, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "packed", model.Actor{UserID: 5}); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "lost", admin); !errors.Is(err, domainErrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := f.lifecycle.AdvanceStatus(context.Background(), 4040, "packed", admin); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyPayment(t *testing.T) {
	f := newFixture(t)
	order, _ := f.placeOrder(t, 5, 1)
	ctx := context.Background()

	applied, err := f.lifecycle.ApplyPayment(ctx, model.PaymentNotification{OrderNumber: order.Number, Outcome: model.PaymentOutcomeFailure})
	if err != nil || applied {
		t.Fatalf("failure must not apply: %v %v", applied, err)
	}
	if got := f.store.Order(order.ID); got.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("failure changed payment status to %s", got.PaymentStatus)
	}

	success := model.PaymentNotification{OrderNumber: order.Number, PaymentReference: "pay_1", Outcome: model.PaymentOutcomeSuccess}
	if applied, err = f.lifecycle.ApplyPayment(ctx, success); err != nil || !applied {
		t.Fatalf("expected success to apply: %v %v", applied, err)
	}
	if got := f.store.Order(order.ID); got.PaymentStatus != model.PaymentStatusPaid || got.PaymentID != "pay_1" {
		t.Fatalf("unexpected payment state %s %s", got.PaymentStatus, got.PaymentID)
	}
	if applied, err = f.lifecycle.ApplyPayment(ctx, success); err != nil || applied {
		t.Fatalf("repeated success must be a no-op: %v %v", applied, err)
	}
	if n := countEvents(f.store.AllEvents(), model.EventOrderPaid); n != 1 {
		t.Fatalf("expected one paid event, got %d", n)
	}

	if _, err := f.lifecycle.ApplyPayment(ctx, model.PaymentNotification{OrderNumber: "SFNOPE", Outcome: model.PaymentOutcomeSuccess}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentCancelAndAdminTransitionsRestoreOnce(t *testing.T) {
	f := newFixture(t)
	order, p := f.placeOrder(t, 5, 3)
	owner := model.Actor{UserID: 5}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	run := func(fn func() error, allowed ...error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn()
			if err == nil {
				return
			}
			for _, target := range allowed {
				if errors.Is(err, target) {
					return
				}
			}
			t.Errorf("unexpected error %v", err)
		}()
	}
	for range 4 {
		run(func() error {
			_, err := f.lifecycle.Cancel(context.Background(), order.ID, owner)
			return err
		}, domainErrors.ErrNotCancellable)
		run(func() error {
			_, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "cancelled", admin)
			return err
		})
		run(func() error {
			_, err := f.lifecycle.AdvanceStatus(context.Background(), order.ID, "returned", admin)
			return err
		})
	}
	close(start)
	wg.Wait()

	if got := f.store.Product(p.ID).Stock; got != 10 {
		t.Fatalf("expected stock restored exactly once to 10, got %d", got)
	}
	restores := 0
	for _, m := range f.store.AllMovements() {
		if m.OrderID == order.ID && m.Delta > 0 {
			restores++
			if m.Delta != 3 {
				t.Fatalf("unexpected restore delta %d", m.Delta)
			}
		}
	}
	if restores != 1 {
		t.Fatalf("expected one restore movement, got %d", restores)
	}
	if status := f.store.Order(order.ID).Status; !status.Terminal() {
		t.Fatalf("expected order to end cancelled or returned, got %s", status)
	}
}
