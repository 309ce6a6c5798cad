package utils

import (
	"context"
	"time"
)

type contextKey string

const (
	ContextUserIDKey contextKey = "userID"
	ContextRoleKey   contextKey = "role"
)

// SessionData is what the session middleware needs to know about a token.
type SessionData struct {
	UserID    uint
	ExpiresAt time.Time
}

// Role is inferred from role-table membership; it is never stored as a column.
type Role string

const (
	RoleRenter   Role = "Renter"
	RoleLandlord Role = "Landlord"
	RoleUnknown  Role = "Unknown"
)

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(ContextUserIDKey).(uint)
	return userID, ok
}

func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, ContextRoleKey, role)
}

func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(ContextRoleKey).(Role)
	return role, ok
}
