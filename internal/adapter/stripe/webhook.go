// Package stripe turns signed Stripe webhooks into payment notifications.
package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Source labels notifications produced by this adapter.
const Source = "stripe"

// OrderNumberMetadataKey is the PaymentIntent metadata entry holding the order number.
const OrderNumberMetadataKey = "order_number"

var (
	ErrInvalidSignature = errors.New("stripe webhook signature validation failed")
	// ErrIgnoredEvent marks well-formed events that carry no payment outcome for an order.
	ErrIgnoredEvent = errors.New("stripe event ignored")
)

// WebhookParser verifies webhook signatures with the endpoint secret.
type WebhookParser struct {
	secret string
}

func NewWebhookParser(secret string) *WebhookParser {
	return &WebhookParser{secret: secret}
}

// Parse validates payload against the Stripe-Signature header value and
// extracts the order payment outcome.
func (p *WebhookParser) Parse(payload []byte, signature string) (model.PaymentNotification, error) {
	if p.secret == "" || signature == "" {
		return model.PaymentNotification{}, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return model.PaymentNotification{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var outcome model.PaymentOutcome
	switch event.Type {
	case stripeapi.EventTypePaymentIntentSucceeded:
		outcome = model.PaymentOutcomeSuccess
	case stripeapi.EventTypePaymentIntentPaymentFailed:
		outcome = model.PaymentOutcomeFailure
	default:
		return model.PaymentNotification{}, fmt.Errorf("%w: %s", ErrIgnoredEvent, event.Type)
	}

	if event.Data == nil {
		return model.PaymentNotification{}, errors.New("missing stripe event data")
	}

	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return model.PaymentNotification{}, fmt.Errorf("invalid payment intent: %w", err)
	}
	if intent.ID == "" {
		return model.PaymentNotification{}, errors.New("missing payment intent ID")
	}

	number := strings.TrimSpace(intent.Metadata[OrderNumberMetadataKey])
	if number == "" {
		return model.PaymentNotification{}, fmt.Errorf("%w: payment intent %s has no order number", ErrIgnoredEvent, intent.ID)
	}

	return model.PaymentNotification{
		Source:           Source,
		EventID:          event.ID,
		OrderNumber:      number,
		PaymentReference: intent.ID,
		Outcome:          outcome,
	}, nil
}
