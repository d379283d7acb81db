package http

import (
	"context"

	"clubhub-backend/internal/security"
)

type contextKey int

const (
	principalKey contextKey = iota
	requestIDKey
)

func withPrincipal(ctx context.Context, p *security.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil on public routes.
func PrincipalFromContext(ctx context.Context) *security.Principal {
	p, _ := ctx.Value(principalKey).(*security.Principal)
	return p
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
