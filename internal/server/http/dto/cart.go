package dto

// CartItemRequest adds a product to the cart.
type CartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// QuantityRequest changes the quantity of a cart line.
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// CouponCodeRequest applies a coupon to the cart.
type CouponCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// LineResponse is a priced cart or order line.
type LineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
}

// TotalsResponse is the price breakdown in two decimal strings.
type TotalsResponse struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// CartResponse is a priced cart preview.
type CartResponse struct {
	Items       []LineResponse `json:"items"`
	Totals      TotalsResponse `json:"totals"`
	CouponCode  string         `json:"coupon_code,omitempty"`
	CouponError string         `json:"coupon_error,omitempty"`
}
