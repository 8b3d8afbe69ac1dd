// internal/app/features/attachments/routes.go
package attachments

import (
	"github.com/go-chi/chi/v5"

	"github.com/ringihub/ringihub/internal/app/system/auth"
)

// Routes returns the router for file endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.Upload)
	r.Get("/{fileID}", h.Download)

	return r
}
