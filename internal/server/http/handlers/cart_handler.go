package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// CartHandler serves the session cart.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	preview, err := h.facade.Cart(c.Request.Context(), CurrentUserID(c))
	h.respond(c, preview, err)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	preview, err := h.facade.AddCartItem(c.Request.Context(), CurrentUserID(c), req.ProductID, req.Quantity)
	h.respond(c, preview, err)
}

// UpdateItem handles PUT /api/cart/items/:product_id.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	preview, err := h.facade.UpdateCartItem(c.Request.Context(), CurrentUserID(c), productID, req.Quantity)
	h.respond(c, preview, err)
}

// RemoveItem handles DELETE /api/cart/items/:product_id.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}
	preview, err := h.facade.RemoveCartItem(c.Request.Context(), CurrentUserID(c), productID)
	h.respond(c, preview, err)
}

// ApplyCoupon handles POST /api/cart/coupon.
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req dto.CouponCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	preview, err := h.facade.ApplyCoupon(c.Request.Context(), CurrentUserID(c), req.Code)
	h.respond(c, preview, err)
}

// RemoveCoupon handles DELETE /api/cart/coupon.
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	preview, err := h.facade.RemoveCoupon(c.Request.Context(), CurrentUserID(c))
	h.respond(c, preview, err)
}

// ListAddresses handles GET /api/user/addresses.
func (h *CartHandler) ListAddresses(c *gin.Context) {
	addresses, err := h.facade.Addresses(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(addresses) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		resp = append(resp, toAddressResponse(a))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAddress handles POST /api/user/addresses.
func (h *CartHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	address, err := h.facade.CreateAddress(c.Request.Context(), CurrentUserID(c), usecase.AddressInput{
		Name:    req.Name,
		Mobile:  req.Mobile,
		Line1:   req.Line1,
		Line2:   req.Line2,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
		Country: req.Country,
		Default: req.Default,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(*address))
}

func (h *CartHandler) respond(c *gin.Context, preview *usecase.CartPreview, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(preview))
}
