package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AdminHandler serves staff endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Orders handles GET /api/admin/orders?status=.
func (h *AdminHandler) Orders(c *gin.Context) {
	orders, err := h.facade.AllOrders(c.Request.Context(), c.Query("status"), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderList(orders))
}

// AdvanceStatus handles POST /api/admin/orders/:id/status.
func (h *AdminHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.AdvanceOrderStatus(c.Request.Context(), orderID, req.Status, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Coupons handles GET /api/admin/coupons.
func (h *AdminHandler) Coupons(c *gin.Context) {
	coupons, err := h.facade.Coupons(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.CouponResponse, 0, len(coupons))
	for _, cp := range coupons {
		resp = append(resp, toCouponResponse(cp))
	}
	c.JSON(http.StatusOK, resp)
}

// UpsertCoupon handles POST /api/admin/coupons.
func (h *AdminHandler) UpsertCoupon(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	in := usecase.CouponInput{
		Code:          req.Code,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MinPurchase:   req.MinPurchase,
		UsageLimit:    req.UsageLimit,
		UserLimit:     req.UserLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Active:        req.Active == nil || *req.Active,
	}
	if req.MaxDiscount != nil {
		in.MaxDiscount = decimal.NewNullDecimal(*req.MaxDiscount)
	}

	coupon, err := h.facade.UpsertCoupon(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCouponResponse(*coupon))
}

// DeleteCoupon handles DELETE /api/admin/coupons/:code.
func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	if err := h.facade.DeleteCoupon(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateProduct handles POST /api/admin/products.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	product, err := h.facade.CreateProduct(c.Request.Context(), usecase.ProductInput{
		SKU:    req.SKU,
		Name:   req.Name,
		Price:  req.Price,
		Stock:  req.Stock,
		Active: req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*product))
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	product, err := h.facade.UpdateProduct(c.Request.Context(), productID, usecase.ProductUpdate{
		Name:   req.Name,
		Price:  req.Price,
		Active: req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*product))
}
