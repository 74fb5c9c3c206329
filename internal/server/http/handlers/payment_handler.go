package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/adapter/stripe"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const maxWebhookBody = 64 << 10

var received = dto.AckResponse{Status: "received"}

// PaymentHandler accepts gateway callbacks. Deliveries are acknowledged
// whether or not they changed an order so gateways stop retrying.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Callback handles POST /api/payments/callback.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	h.handle(c, model.PaymentNotification{
		Source:           "callback",
		EventID:          req.EventID,
		OrderNumber:      req.OrderNumber,
		PaymentReference: req.PaymentReference,
		Outcome:          model.PaymentOutcome(req.Outcome),
	})
}

// StripeWebhook handles POST /api/payments/stripe/webhook.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	n, err := h.facade.ParseStripeWebhook(payload, c.GetHeader("Stripe-Signature"))
	switch {
	case errors.Is(err, stripe.ErrIgnoredEvent):
		c.JSON(http.StatusOK, received)
		return
	case errors.Is(err, stripe.ErrInvalidSignature):
		c.Status(http.StatusBadRequest)
		return
	case err != nil:
		h.logger.WarnContext(c.Request.Context(), "malformed stripe webhook", slog.String("error", err.Error()))
		c.Status(http.StatusBadRequest)
		return
	}

	h.handle(c, n)
}

func (h *PaymentHandler) handle(c *gin.Context, n model.PaymentNotification) {
	result, err := h.facade.HandlePayment(c.Request.Context(), n)
	switch {
	case errors.Is(err, domainErrors.ErrInvalidNotification):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	case err != nil && !errors.Is(err, domainErrors.ErrNotFound):
		// Transient failures are not acknowledged so the gateway retries.
		c.Status(http.StatusInternalServerError)
		return
	case err != nil:
		h.logger.WarnContext(c.Request.Context(), "payment notification for unknown order",
			slog.String("source", n.Source),
			slog.String("order_number", n.OrderNumber),
		)
	default:
		h.logger.InfoContext(c.Request.Context(), "payment notification handled",
			slog.String("source", n.Source),
			slog.String("order_number", n.OrderNumber),
			slog.String("result", string(result)),
		)
	}
	c.JSON(http.StatusOK, received)
}

// HealthHandler reports service readiness.
type HealthHandler struct {
	facade HealthFacade
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(facade HealthFacade) *HealthHandler {
	return &HealthHandler{facade: facade}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.facade.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
