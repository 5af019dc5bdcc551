package context

import (
	"context"
)

// Caller is the authenticated back-office user behind a request.
// Tokens are issued elsewhere; this module only verifies them.
type Caller struct {
	UserID string
	Email  string
	Roles  []string
}

type callerKey struct{}

// WithCaller adds Caller to context.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// GetCaller returns Caller from context.
func GetCaller(ctx context.Context) *Caller {
	if v, ok := ctx.Value(callerKey{}).(*Caller); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if c := GetCaller(ctx); c != nil {
		return c.UserID
	}
	return ""
}
