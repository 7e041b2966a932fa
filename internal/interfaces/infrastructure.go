package interfaces

import (
	"context"
	"time"
)

// IdempotencyStore is a TTL key-value store used for request replay and
// webhook de-duplication. Get returns cache.ErrMiss for absent keys.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher forwards an event to a message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}
