package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/core/apperror"
	appctx "salesdocs/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.Caller, error)
}

// Auth middleware validates JWT tokens and populates the caller context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		caller, err := validator.ValidateToken(tokenString)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(err))
			c.Abort()
			return
		}

		setCaller(c, caller)
		c.Next()
	}
}

// OptionalAuth validates token if present, but doesn't require it.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if caller, err := validator.ValidateToken(tokenString); err == nil && caller != nil {
				setCaller(c, caller)
			}
		}
		c.Next()
	}
}

// RequireAuthFor applies Auth to mutating methods only.
func RequireAuthFor(validator JWTValidator) gin.HandlerFunc {
	required := Auth(validator)
	optional := OptionalAuth(validator)
	return func(c *gin.Context) {
		if isMutating(c.Request.Method) {
			required(c)
			return
		}
		optional(c)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setCaller(c *gin.Context, caller *appctx.Caller) {
	ctx := appctx.WithCaller(c.Request.Context(), caller)
	c.Request = c.Request.WithContext(ctx)
	c.Set("user_id", caller.UserID)
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
