package httpapi

import "context"

type contextKey string

const adminContextKey contextKey = "admin_actor"

func withAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminContextKey, true)
}

func isAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(adminContextKey).(bool)
	return ok && admin
}
