package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"attendance-monitor/internal/account"
)

type ctxKey struct{}

// WithAccount returns a context carrying the authenticated account.
func WithAccount(ctx context.Context, a account.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// AccountFrom returns the authenticated account, if any.
func AccountFrom(ctx context.Context) (account.Account, bool) {
	a, ok := ctx.Value(ctxKey{}).(account.Account)
	return a, ok
}

// Current is AccountFrom for a gin request.
func Current(c *gin.Context) (account.Account, bool) {
	return AccountFrom(c.Request.Context())
}
