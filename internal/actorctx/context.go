package actorctx

import (
	"context"
	"strings"
)

// ActorContextKey is the request context key for the acting admin user.
type ActorContextKey struct{}

// DefaultActor is used when no admin identity accompanies the trigger.
const DefaultActor = "system"

// WithActor stores the acting admin username in the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorContextKey{}, strings.TrimSpace(actor))
}

// ActorFromContext returns the acting admin username, or DefaultActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return DefaultActor
	}
	if value, ok := ctx.Value(ActorContextKey{}).(string); ok && value != "" {
		return value
	}
	return DefaultActor
}
