package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names an order event published to subscribers.
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderCancelled     EventType = "order.cancelled"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderPaid          EventType = "order.paid"
)

// EventStatus tracks outbox delivery.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusPublished  EventStatus = "published"
)

// OrderEvent is an outbox record appended in the same transaction as the
// order change it describes.
type OrderEvent struct {
	ID          int64
	EventID     string
	OrderID     int64
	OrderNumber string
	Type        EventType
	Payload     []byte
	Status      EventStatus
	Attempts    int
	CreatedAt   time.Time
}

// OrderEventPayload is the JSON body of an order event.
type OrderEventPayload struct {
	EventID       string        `json:"event_id"`
	Type          EventType     `json:"type"`
	OrderNumber   string        `json:"order_number"`
	UserID        int64         `json:"user_id"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Total         string        `json:"total"`
	TrackingCode  string        `json:"tracking_code,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// NewOrderEvent snapshots order state into a pending outbox event.
func NewOrderEvent(order *Order, typ EventType, now time.Time) (OrderEvent, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(OrderEventPayload{
		EventID:       id,
		Type:          typ,
		OrderNumber:   order.Number,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total.StringFixed(2),
		TrackingCode:  order.TrackingCode,
		OccurredAt:    now.UTC(),
	})
	if err != nil {
		return OrderEvent{}, err
	}
	return OrderEvent{
		EventID:     id,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Type:        typ,
		Payload:     payload,
		Status:      EventStatusPending,
		CreatedAt:   now,
	}, nil
}

// PaymentOutcome is the result reported by a payment gateway.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

// PaymentNotification is a gateway callback translated into domain terms.
type PaymentNotification struct {
	Source           string
	EventID          string
	OrderNumber      string
	PaymentReference string
	Outcome          PaymentOutcome
}
