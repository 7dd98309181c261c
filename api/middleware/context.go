package middleware

import (
	"context"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

type contextKey string

const (
	ctxActorRole  contextKey = "actor_role"
	ctxOperatorID contextKey = "operator_id"
)

func ActorRoleFromContext(ctx context.Context) (enums.ActorRole, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(ctxActorRole).(enums.ActorRole); ok {
		return v, true
	}
	return "", false
}

func OperatorIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	if v, ok := ctx.Value(ctxOperatorID).(int64); ok && v != 0 {
		return v, true
	}
	return 0, false
}

// WithActorRole injects the caller role into the context.
func WithActorRole(ctx context.Context, role enums.ActorRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorRole, role)
}

// WithOperatorID injects the operator identifier into the context.
func WithOperatorID(ctx context.Context, operatorID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperatorID, operatorID)
}
