package transport

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// SessionHandler exposes the caller's session
type SessionHandler struct{}

// RegisterRoutes registers GET /api/session behind authMiddleware
func (h SessionHandler) RegisterRoutes(r chi.Router, guards ...func(http.Handler) http.Handler) {
	r.With(guards...).Get("/api/session", h.GetSession)
}

// GetSession returns the session the auth middleware built for this request
func (SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "no session")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, session)
}
