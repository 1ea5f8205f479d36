package middleware

import (
	"net/http"
	"time"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry writes safely
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds client-supplied keys
const MaxIdempotencyKeyLength = 128

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated write carrying an Idempotency-Key that was
// already claimed by the same actor on the same route. The claim is released
// when the first attempt fails with a 4xx or 5xx so it can be retried.
// Requests without the header pass through untouched.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(GetRequestID(c), []dto.ValidationDetail{
				{Field: IdempotencyKeyHeader, Message: "Must be at most 128 characters"},
			}))
			return
		}

		ctx := c.Request.Context()
		storeKey := GetActorID(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		claimed, err := cfg.Store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			// Unavailable store degrades to at-least-once rather than blocking writes
			log.Warn("Idempotency store unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
				nil,
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
	}
}
