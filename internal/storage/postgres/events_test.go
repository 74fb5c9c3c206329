package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestEventRepositoryAppend(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Events()
	ctx := context.Background()
	now := time.Now()

	ev := model.OrderEvent{
		EventID:     "ev-1",
		OrderID:     42,
		OrderNumber: "SF1",
		Type:        model.EventOrderPlaced,
		Payload:     []byte(`{"type":"order.placed"}`),
		CreatedAt:   now,
	}
	mock.ExpectExec("INSERT INTO order_events").
		WithArgs("ev-1", int64(42), "SF1", model.EventOrderPlaced, ev.Payload, model.EventStatusPending, now).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Append(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO order_events").WillReturnError(errors.New("insert"))
	if err := repo.Append(ctx, ev); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestEventRepositoryClaimBatch(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Events()
	ctx := context.Background()
	now := time.Now()

	cols := []string{"id", "event_id", "order_id", "order_number", "type", "payload", "status", "attempts", "created_at"}
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(10).WillReturnRows(
		pgxmockv3.NewRows(cols).
			AddRow(int64(9), "ev-9", int64(2), "SF2", model.EventOrderPaid, []byte("{}"), model.EventStatusProcessing, 1, now).
			AddRow(int64(3), "ev-3", int64(1), "SF1", model.EventOrderPlaced, []byte("{}"), model.EventStatusProcessing, 2, now))
	events, err := repo.ClaimBatch(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].ID != 3 || events[1].ID != 9 {
		t.Fatalf("expected events ordered by id, got %+v", events)
	}
	if events[0].Attempts != 2 || events[0].Status != model.EventStatusProcessing {
		t.Fatalf("unexpected claimed event %+v", events[0])
	}

	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(10).WillReturnRows(pgxmockv3.NewRows(cols))
	if events, err := repo.ClaimBatch(ctx, 10); err != nil || len(events) != 0 {
		t.Fatalf("expected empty batch, got %+v err=%v", events, err)
	}

	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(10).WillReturnError(errors.New("claim"))
	if _, err := repo.ClaimBatch(ctx, 10); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestEventRepositoryStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Events()
	ctx := context.Background()

	mock.ExpectExec("SET status='published'").WithArgs(int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkPublished(ctx, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("SET status='published'").WithArgs(int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.MarkPublished(ctx, 4); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("SET status='pending'").WithArgs(int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Release(ctx, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("SET status='pending'").WithArgs(int64(3)).WillReturnError(errors.New("release"))
	if err := repo.Release(ctx, 3); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
