// Package cache provides short-lived key/value storage for carts and
// payment callback idempotency.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Provider stores string values with a time to live.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// CallbackKey identifies a processed payment notification.
func CallbackKey(source, eventID string) string {
	return fmt.Sprintf("callback:%s:%s", source, eventID)
}

// CartKey identifies the session cart of a user.
func CartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}
