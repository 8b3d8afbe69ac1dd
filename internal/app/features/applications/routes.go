// internal/app/features/applications/routes.go
package applications

import (
	"github.com/go-chi/chi/v5"

	"github.com/ringihub/ringihub/internal/app/system/auth"
)

// Routes returns the router for application endpoints. Everything
// requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.Create)
	r.Get("/", h.Search)
	r.Get("/count", h.Count)
	r.Get("/types", h.Types)

	r.Get("/submitted", h.Submitted)
	r.Get("/submitted/pending", h.SubmittedPending)
	r.Get("/submitted/approved", h.SubmittedApproved)
	r.Get("/submitted/rejected", h.SubmittedRejected)

	r.Get("/received", h.Received)
	r.Get("/received/pending", h.ReceivedPending)
	r.Get("/received/approved", h.ReceivedApproved)
	r.Get("/received/rejected", h.ReceivedRejected)

	r.Route("/{applicationID}", func(rr chi.Router) {
		rr.Get("/", h.Get)
		rr.Delete("/", h.Delete)

		rr.Post("/approval", h.Approve)
		rr.Post("/refusal", h.Refuse)

		rr.Put("/privacy", h.UpdatePrivacy)

		rr.Get("/visibility", h.ListVisibility)
		rr.Put("/visibility", h.ReplaceVisibility)
		rr.Post("/visibility", h.AddVisibility)
		rr.Delete("/visibility/{groupID}", h.RemoveVisibility)
	})

	return r
}
