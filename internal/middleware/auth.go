package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yamdb/internal/apperr"
	"yamdb/internal/policy"
	"yamdb/internal/services"
	"yamdb/internal/store"
)

const CallerKey = "caller"

// Authenticate resolves the caller from a bearer token. Requests without an
// Authorization header continue as anonymous; a bad token is rejected.
func Authenticate(tokens *services.TokenIssuer, st *store.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(CallerKey, policy.Anonymous())
			c.Next()
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			abort(c, fmt.Errorf("authorization header must be 'Bearer <token>': %w", apperr.ErrUnauthenticated))
			return
		}

		userID, err := tokens.ParseAccessToken(strings.TrimSpace(raw))
		if err != nil {
			abort(c, err)
			return
		}

		user, err := st.UserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				abort(c, fmt.Errorf("user not found: %w", apperr.ErrUnauthenticated))
				return
			}
			log.Error("Failed to load user for token", zap.Uint("user_id", userID), zap.Error(err))
			abort(c, err)
			return
		}

		c.Set(CallerKey, policy.FromUser(user))
		c.Next()
	}
}

// CallerFrom returns the caller set by Authenticate, or anonymous.
func CallerFrom(c *gin.Context) policy.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(policy.Caller); ok {
			return caller
		}
	}
	return policy.Anonymous()
}

// RequestFrom builds the policy request for c.
func RequestFrom(c *gin.Context) policy.Request {
	return policy.Request{Method: c.Request.Method, Caller: CallerFrom(c)}
}

// Require runs the collection-level check of p before the handler.
func Require(p policy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Authorize(p, RequestFrom(c)); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.Status(err), apperr.Payload(err))
}
