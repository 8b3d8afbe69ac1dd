// internal/app/features/applications/create.go
package applications

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/applications"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

type createRequest struct {
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	FormData         string   `json:"form_data"`
	Private          bool     `json:"private"`
	RecipientIDs     []string `json:"recipient_ids"`
	VisibilityGroups []string `json:"visibility_group_ids"`
}

// Create handles POST /applications. The signed-in user becomes the
// applicant; recipients are submitted to in the order given.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	recipients, err := parseObjectIDs(req.RecipientIDs, "recipient id")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	groups, err := parseObjectIDs(req.VisibilityGroups, "group id")
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Medium())
	defer cancel()

	app, err := h.Apps.Create(ctx, applicationstore.CreateInput{
		ApplicantID:        userID,
		Type:               req.Type,
		Title:              req.Title,
		FormData:           req.FormData,
		Private:            req.Private,
		RecipientIDs:       recipients,
		VisibilityGroupIDs: groups,
	})
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	h.Log.Info("application created",
		zapID("application_id", app.ID),
		zapID("applicant_id", userID))
	httpx.WriteJSON(w, http.StatusCreated, app)
}

func parseObjectIDs(hexes []string, what string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperr.Validation("invalid %s %q", what, h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
