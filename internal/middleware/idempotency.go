package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/transvoucher-go/internal/cache"
	"github.com/akylbek/transvoucher-go/internal/interfaces"
	"github.com/akylbek/transvoucher-go/internal/telemetry"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyKey formats the store key for a client-supplied idempotency key.
func IdempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

// idempotencyLockTTL must exceed the SDK request timeout.
const idempotencyLockTTL = 2 * time.Minute

func lockKey(key string) string {
	return fmt.Sprintf("idempotency-lock:%s", key)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Handlers store their response under IdempotencyKey.
// While a request holds the key, concurrent requests with the same key get
// 409 instead of reaching the handler.
func IdempotencyMiddleware(store interfaces.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
			c.Abort()
			return
		}

		if replay(c, store, key) {
			return
		}

		claimed, err := store.SetNX(ctx, lockKey(key), []byte("1"), idempotencyLockTTL)
		if err != nil {
			telemetry.Logger.Warn("Idempotency claim failed",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
			claimed = true
		}
		if !claimed {
			c.JSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is already in progress"})
			c.Abort()
			return
		}
		defer func() {
			if err := store.Delete(context.WithoutCancel(ctx), lockKey(key)); err != nil {
				telemetry.Logger.Warn("Failed to release idempotency claim",
					zap.String("idempotency_key", key),
					zap.Error(err),
				)
			}
		}()

		// The previous holder may have finished between the lookup and the claim.
		if replay(c, store, key) {
			return
		}

		c.Set("idempotency_key", key)
		c.Next()
	}
}

// replay writes the stored response for key and reports whether it did.
func replay(c *gin.Context, store interfaces.IdempotencyStore, key string) bool {
	cached, err := store.Get(c.Request.Context(), IdempotencyKey(key))
	if err == nil {
		c.Header("Idempotent-Replayed", "true")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		c.Abort()
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		telemetry.Logger.Warn("Idempotency lookup failed",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
	return false
}
