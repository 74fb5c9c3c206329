package dto

// PaymentCallbackRequest is a generic gateway notification.
type PaymentCallbackRequest struct {
	EventID          string `json:"event_id"`
	OrderNumber      string `json:"order_number" binding:"required"`
	PaymentReference string `json:"payment_reference"`
	Outcome          string `json:"outcome" binding:"required"`
}

// AckResponse acknowledges a gateway delivery.
type AckResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a user facing rejection reason.
type ErrorResponse struct {
	Error       string `json:"error"`
	MinPurchase string `json:"min_purchase,omitempty"`
}
