package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farmadist/backend/internal/domain/shared"
	"github.com/farmadist/backend/internal/infrastructure/auth"
	"github.com/farmadist/backend/internal/infrastructure/logger"
	"github.com/farmadist/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Actor resolution keys and headers
const (
	JWTClaimsKey   = "jwt_claims"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	UserIDHeader   = "X-User-ID"
	MaxActorIDSize = shared.MaxActorIDLength
)

// ActorConfig holds configuration for the actor middleware
type ActorConfig struct {
	// JWTService validates bearer tokens. Bearer tokens are rejected when it has no secret.
	JWTService *auth.JWTService
	// AllowHeaderFallback accepts X-User-ID when no bearer token is sent.
	// Only enable it outside production.
	AllowHeaderFallback bool
	// SkipPaths are served without an actor
	SkipPaths []string
	Logger    *zap.Logger
}

// Actor resolves the operator performing the request.
// The id comes from the user_id claim of a bearer JWT, or from X-User-ID
// when AllowHeaderFallback is set. It is stored in the gin context under
// logger.GinActorIDKey and in the request context via logger.WithActorID.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		var actorID string
		authHeader := c.GetHeader(AuthHeaderKey)
		switch {
		case authHeader != "":
			claims, err := bearerClaims(cfg.JWTService, authHeader)
			if err != nil {
				log.Debug("Rejected bearer token",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
				abortUnauthorized(c, err)
				return
			}
			if len(claims.UserID) > MaxActorIDSize {
				abortUnauthorized(c, auth.ErrInvalidToken)
				return
			}
			c.Set(JWTClaimsKey, claims)
			actorID = claims.UserID
		case cfg.AllowHeaderFallback:
			actorID = strings.TrimSpace(c.GetHeader(UserIDHeader))
			if len(actorID) > MaxActorIDSize {
				actorID = ""
			}
		}

		if actorID == "" {
			abortUnauthorized(c, nil)
			return
		}

		c.Set(logger.GinActorIDKey, actorID)
		ctx, _ := logger.WithActorID(c.Request.Context(), logger.FromContext(c.Request.Context()), actorID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerClaims(jwtService *auth.JWTService, header string) (*auth.Claims, error) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	if jwtService == nil {
		return nil, auth.ErrMissingSecret
	}
	return jwtService.ValidateToken(token)
}

func abortUnauthorized(c *gin.Context, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case err != nil:
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, GetRequestID(c), nil))
}

// GetActorID returns the actor resolved by Actor
func GetActorID(c *gin.Context) string {
	return c.GetString(logger.GinActorIDKey)
}

// GetClaims returns the validated JWT claims, if the request carried a token
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
