// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/auth"
)

// Handler owns the logout endpoint.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler creates a new logout Handler.
func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sm, Log: logger}
}

// Routes returns the router for the logout endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Logout)
	return r
}

// Logout handles POST /logout. Logging out without a session is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("ending session", err))
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}
