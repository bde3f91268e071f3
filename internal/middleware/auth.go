package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/auth"

	"go.uber.org/zap"
)

// SessionVerifier turns a bearer token into the caller's session
type SessionVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// AuthMiddleware requires a valid bearer token and stores the resulting
// session in the request context.
func AuthMiddleware(verifier SessionVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, auth.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			logger.Debug("User authenticated",
				zap.String("user_id", session.UserID.String()),
				zap.String("role", session.Role),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}
