// internal/app/features/applications/delete.go
package applications

import (
	"net/http"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Delete handles DELETE /applications/{applicationID}. Author only;
// non-authors get not-found.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := contextWithTimeout(r, timeouts.Medium())
	defer cancel()

	if err := h.Apps.Delete(ctx, appID, userID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("application deleted",
		zapID("application_id", appID),
		zapID("applicant_id", userID))
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}
