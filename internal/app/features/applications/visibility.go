// internal/app/features/applications/visibility.go
package applications

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

type visibilityRequest struct {
	GroupIDs []string `json:"group_ids"`
}

type addVisibilityRequest struct {
	GroupID string `json:"group_id"`
}

type visibilityResponse struct {
	GroupIDs []primitive.ObjectID `json:"group_ids"`
}

// ListVisibility handles GET /applications/{applicationID}/visibility.
func (h *Handler) ListVisibility(w http.ResponseWriter, r *http.Request) {
	appID, err := urlObjectID(r, "applicationID")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	if _, err := h.Apps.GetByID(ctx, appID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	grants, err := h.Apps.Grants(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, visibilityResponse{GroupIDs: grants})
}

// ReplaceVisibility handles PUT /applications/{applicationID}/visibility,
// swapping the whole whitelist. Author only.
func (h *Handler) ReplaceVisibility(w http.ResponseWriter, r *http.Request) {
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

	var req visibilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	groupIDs, err := parseObjectIDs(req.GroupIDs, "group id")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Medium())
	defer cancel()

	if err := h.Apps.ReplaceVisibility(ctx, appID, userID, groupIDs); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	grants, err := h.Apps.Grants(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, visibilityResponse{GroupIDs: grants})
}

// AddVisibility handles POST /applications/{applicationID}/visibility.
// Author only; whitelisting an already granted group is a no-op.
func (h *Handler) AddVisibility(w http.ResponseWriter, r *http.Request) {
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

	var req addVisibilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	groupID, err := primitive.ObjectIDFromHex(req.GroupID)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid group id %q", req.GroupID))
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	if err := h.Apps.AddVisibility(ctx, appID, userID, groupID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"group_id": groupID.Hex()})
}

// RemoveVisibility handles
// DELETE /applications/{applicationID}/visibility/{groupID}. Author
// only.
func (h *Handler) RemoveVisibility(w http.ResponseWriter, r *http.Request) {
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
	groupID, err := urlObjectID(r, "groupID")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Short())
	defer cancel()

	if err := h.Apps.RemoveVisibility(ctx, appID, userID, groupID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}
