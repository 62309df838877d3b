package middleware

import (
	"context"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

// Identity is the caller resolved from the bearer token.
type Identity struct {
	UserID   uint64
	Username string
	Role     enums.UserRole
	AccessID string
}

func UserIDFromContext(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(uint64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// IdentityFromContext returns the authenticated caller, or false when the
// request did not pass through Auth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id := UserIDFromContext(ctx)
	if id == 0 {
		return Identity{}, false
	}
	username, _ := ctx.Value(ctxUsername).(string)
	return Identity{
		UserID:   id,
		Username: username,
		Role:     RoleFromContext(ctx),
		AccessID: AccessIDFromContext(ctx),
	}, true
}

// WithIdentity injects the caller into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, identity.UserID)
	ctx = context.WithValue(ctx, ctxUsername, identity.Username)
	ctx = context.WithValue(ctx, ctxRole, identity.Role)
	return context.WithValue(ctx, ctxAccessID, identity.AccessID)
}
