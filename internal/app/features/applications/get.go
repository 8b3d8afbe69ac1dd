// internal/app/features/applications/get.go
package applications

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/policy/visibilitypolicy"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/app/workflow"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// userSummary is the public slice of a user embedded in application
// records.
type userSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// chainEntry is one recipient position with its decision, if any.
type chainEntry struct {
	FlowIndex int              `json:"flow_index"`
	Recipient *userSummary     `json:"recipient"`
	Decision  *models.Decision `json:"decision,omitempty"`
}

// applicationRecord is the full structured read of one application.
type applicationRecord struct {
	Application models.Application   `json:"application"`
	Applicant   *userSummary         `json:"applicant,omitempty"`
	Recipients  []chainEntry         `json:"recipients"`
	Visibility  []primitive.ObjectID `json:"visibility_group_ids"`
	Progress    workflow.Progress    `json:"progress"`
	Forbidden   bool                 `json:"forbidden"`
}

// Get handles GET /applications/{applicationID}. Viewers forbidden by
// the visibility policy get the record shell with content redacted.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.Apps.GetByID(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	subs, err := h.Apps.Submissions(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	decisions, err := h.Decisions.ListByApplication(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	progress, err := workflow.Derive(subs, decisions)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	grants, err := h.Apps.Grants(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	forbidden, err := visibilitypolicy.Check(ctx, h.DB, &app, userID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	record := applicationRecord{
		Application: app,
		Visibility:  grants,
		Progress:    progress,
		Forbidden:   forbidden,
	}

	users, err := h.loadUserSummaries(ctx, app, subs)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if u, ok := users[app.ApplicantID]; ok {
		record.Applicant = u
	}

	byRecipient := make(map[primitive.ObjectID]models.Decision, len(decisions))
	for _, d := range decisions {
		byRecipient[d.RecipientID] = d
	}
	for _, s := range subs {
		entry := chainEntry{FlowIndex: s.FlowIndex, Recipient: users[s.RecipientID]}
		if d, ok := byRecipient[s.RecipientID]; ok {
			d := d
			entry.Decision = &d
		}
		record.Recipients = append(record.Recipients, entry)
	}

	if forbidden {
		visibilitypolicy.Redact(&record.Application)
		for i := range record.Recipients {
			if record.Recipients[i].Decision != nil {
				record.Recipients[i].Decision.Comment = ""
				record.Recipients[i].Decision.AttachmentHankos = ""
			}
		}
	}

	httpx.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) loadUserSummaries(ctx context.Context, app models.Application, subs []models.Submission) (map[primitive.ObjectID]*userSummary, error) {
	ids := []primitive.ObjectID{app.ApplicantID}
	for _, s := range subs {
		ids = append(ids, s.RecipientID)
	}

	cur, err := h.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Storage("loading users", err)
	}
	defer cur.Close(ctx)

	out := map[primitive.ObjectID]*userSummary{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, apperr.Storage("decoding user", err)
		}
		out[u.ID] = &userSummary{ID: u.ID.Hex(), FullName: u.FullName, Email: u.Email}
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Storage("loading users", err)
	}
	return out, nil
}
