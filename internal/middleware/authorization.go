package middleware

import (
	"net/http"

	"storefront/internal/auth"

	"go.uber.org/zap"
)

// RequireAdmin lets through sessions whose role is one of adminRoles. It
// must run after AuthMiddleware.
func RequireAdmin(adminRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := auth.FromContext(r.Context())
			if !ok {
				logger.Warn("Session not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !session.IsAdmin(adminRoles) {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", session.UserID.String()),
					zap.String("role", session.Role),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
