package utils

import "context"

type contextKey string

const (
	ActorEmailKey contextKey = "actor_email"
	ActorRoleKey  contextKey = "actor_role"
)

// SetActorContext stores the authenticated dashboard user (called by middleware)
func SetActorContext(ctx context.Context, email, role string) context.Context {
	ctx = context.WithValue(ctx, ActorEmailKey, email)
	ctx = context.WithValue(ctx, ActorRoleKey, role)
	return ctx
}

// GetActorEmailFromContext retrieves the actor email safely
func GetActorEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(ActorEmailKey).(string)
	return email
}

func GetActorRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ActorRoleKey).(string)
	return role
}
