package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentActor returns the resolved caller, falling back to a customer
// actor built from the user id.
func CurrentActor(c *gin.Context) model.Actor {
	if val, ok := c.Get(middleware.ActorContextKey); ok {
		if actor, ok := val.(model.Actor); ok {
			return actor
		}
	}
	return model.Actor{UserID: CurrentUserID(c)}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

var badRequestErrors = []error{
	domainErrors.ErrInvalidQuantity,
	domainErrors.ErrInvalidPaymentMethod,
	domainErrors.ErrInvalidStatus,
	domainErrors.ErrInvalidCoupon,
	domainErrors.ErrInvalidProduct,
	domainErrors.ErrInvalidAddress,
	domainErrors.ErrInvalidNotification,
}

// writeError maps use case errors onto HTTP statuses. Rule violations carry
// their message; infrastructure failures do not.
func writeError(c *gin.Context, err error) {
	var couponErr *domainErrors.CouponError
	switch {
	case errors.As(err, &couponErr):
		resp := dto.ErrorResponse{Error: couponErr.Error()}
		if errors.Is(err, domainErrors.ErrCouponMinimumPurchaseNotMet) {
			resp.MinPurchase = couponErr.MinPurchase.StringFixed(2)
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrForbidden):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: domainErrors.ErrConflict.Error()})
	case errors.Is(err, domainErrors.ErrOrderCreationFailed):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: domainErrors.ErrOrderCreationFailed.Error()})
	case domainErrors.IsBusinessRule(err):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
