package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toLineResponse(l model.LineItem) dto.LineResponse {
	return dto.LineResponse{
		ProductID: l.ProductID,
		Name:      l.ProductName,
		SKU:       l.ProductSKU,
		UnitPrice: money(l.UnitPrice),
		Quantity:  l.Quantity,
		Amount:    money(l.Amount()),
	}
}

func toTotalsResponse(t model.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		Subtotal: money(t.Subtotal),
		Tax:      money(t.Tax),
		Shipping: money(t.Shipping),
		Discount: money(t.Discount),
		Total:    money(t.Total),
	}
}

func toCartResponse(p *usecase.CartPreview) dto.CartResponse {
	resp := dto.CartResponse{
		Items:      make([]dto.LineResponse, 0, len(p.Lines)),
		Totals:     toTotalsResponse(p.Totals),
		CouponCode: p.CouponCode,
	}
	for _, l := range p.Lines {
		resp.Items = append(resp.Items, toLineResponse(l))
	}
	if p.CouponErr != nil {
		resp.CouponError = p.CouponErr.Error()
	}
	return resp
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                o.ID,
		Number:            o.Number,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethod:     string(o.PaymentMethod),
		Totals:            toTotalsResponse(o.Totals),
		CouponCode:        o.CouponCode,
		TrackingCode:      o.TrackingCode,
		ShippingAddress:   o.ShippingAddress,
		Notes:             o.Notes,
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		CreatedAt:         o.CreatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, toLineResponse(item.LineItem))
	}
	return resp
}

func toOrderList(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toAddressResponse(a model.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID: a.ID,
		AddressRequest: dto.AddressRequest{
			Name:    a.Name,
			Mobile:  a.Mobile,
			Line1:   a.Line1,
			Line2:   a.Line2,
			City:    a.City,
			State:   a.State,
			Pincode: a.Pincode,
			Country: a.Country,
			Default: a.Default,
		},
	}
}

func toCouponResponse(c model.Coupon) dto.CouponResponse {
	resp := dto.CouponResponse{
		Code:          c.Code,
		DiscountType:  string(c.DiscountType),
		DiscountValue: money(c.DiscountValue),
		MinPurchase:   money(c.MinPurchase),
		UsageLimit:    c.UsageLimit,
		UsedCount:     c.UsedCount,
		UserLimit:     c.UserLimit,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
		Active:        c.Active,
	}
	if c.MaxDiscount.Valid {
		capped := money(c.MaxDiscount.Decimal)
		resp.MaxDiscount = &capped
	}
	return resp
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     money(p.Price),
		Stock:     p.Stock,
		SoldCount: p.SoldCount,
		Active:    p.Active,
	}
}
