package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// ActorContextKey holds the resolved model.Actor of the request.
	ActorContextKey = "actor"
	authCookieName  = "storefront_token"
)

// TokenParser extracts the user id from an auth token.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// ActorResolver looks up the role of an authenticated user.
type ActorResolver interface {
	ParseToken(token string) (int64, error)
	Actor(ctx context.Context, userID int64) (model.Actor, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, parser); !ok {
			return
		}
		c.Next()
	}
}

// ActorRequired authenticates the request and resolves the caller's role.
func ActorRequired(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c, resolver)
		if !ok {
			return
		}

		actor, err := resolver.Actor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrInvalidCredentials) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

func authenticate(c *gin.Context, parser TokenParser) (int64, bool) {
	token := extractToken(c)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return 0, false
	}

	userID, err := parser.ParseToken(token)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrInvalidToken) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return 0, false
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return 0, false
	}

	c.Set(UserIDContextKey, userID)
	return userID, true
}

// AdminRequired rejects callers that are not staff. It must run after ActorRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, _ := c.Get(ActorContextKey)
		if actor, ok := val.(model.Actor); !ok || !actor.Admin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
