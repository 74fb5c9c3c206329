package postgres

import (
	"context"
	"sort"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// claimTimeout returns events stuck in processing, e.g. after a crash, to the queue.
const claimTimeout = "5 minutes"

type eventRepository struct {
	q querier
}

func (r *eventRepository) Append(ctx context.Context, event model.OrderEvent) error {
	const query = `INSERT INTO order_events (event_id, order_id, order_number, type, payload, status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, event.EventID, event.OrderID, event.OrderNumber, event.Type,
		event.Payload, model.EventStatusPending, event.CreatedAt)
	return err
}

func (r *eventRepository) ClaimBatch(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	const query = `UPDATE order_events
                   SET status='processing', attempts = attempts + 1, claimed_at = NOW()
                   WHERE id IN (
                       SELECT id FROM order_events
                       WHERE status = 'pending'
                          OR (status = 'processing' AND claimed_at < NOW() - INTERVAL '` + claimTimeout + `')
                       ORDER BY id
                       LIMIT $1
                       FOR UPDATE SKIP LOCKED
                   )
                   RETURNING id, event_id, order_id, order_number, type, payload, status, attempts, created_at`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.OrderEvent
	for rows.Next() {
		var e model.OrderEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.OrderID, &e.OrderNumber, &e.Type,
			&e.Payload, &e.Status, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *eventRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.setStatus(ctx, `UPDATE order_events SET status='published', published_at=NOW() WHERE id=$1`, id)
}

func (r *eventRepository) Release(ctx context.Context, id int64) error {
	return r.setStatus(ctx, `UPDATE order_events SET status='pending', claimed_at=NULL WHERE id=$1`, id)
}

func (r *eventRepository) setStatus(ctx context.Context, query string, id int64) error {
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
