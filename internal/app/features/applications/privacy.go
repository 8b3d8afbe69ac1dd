// internal/app/features/applications/privacy.go
package applications

import (
	"net/http"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

type privacyRequest struct {
	Private bool `json:"private"`
}

// UpdatePrivacy handles PUT /applications/{applicationID}/privacy.
// Author only.
func (h *Handler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
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

	var req privacyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	if err := h.Apps.UpdatePrivacy(ctx, appID, userID, req.Private); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"private": req.Private})
}
