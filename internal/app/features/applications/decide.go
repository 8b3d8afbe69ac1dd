// internal/app/features/applications/decide.go
package applications

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type decideRequest struct {
	Comment          string `json:"comment"`
	AttachmentHankos string `json:"attachment_hankos"`
}

// Approve handles POST /applications/{applicationID}/approval.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.DecisionApproved)
}

// Refuse handles POST /applications/{applicationID}/refusal.
func (h *Handler) Refuse(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.DecisionRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, kind string) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}
	appID, err := urlObjectID(r, "applicationID")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	var req decideRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, h.Log, err)
			return
		}
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Medium())
	defer cancel()

	d, err := h.Decisions.Record(ctx, appID, userID, kind, req.Comment, req.AttachmentHankos)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("decision recorded",
		zapID("application_id", appID),
		zapID("recipient_id", userID),
		zap.String("kind", kind))
	httpx.WriteJSON(w, http.StatusCreated, d)
}
