package auth

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated caller of a single request. It is created by
// the auth middleware and travels explicitly through the request context.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session role is one of adminRoles
func (s *Session) IsAdmin(adminRoles []string) bool {
	if s == nil || s.Role == "" {
		return false
	}
	return slices.Contains(adminRoles, s.Role)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext extracts the session stored by WithSession
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
