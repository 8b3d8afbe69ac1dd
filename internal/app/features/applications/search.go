// internal/app/features/applications/search.go
package applications

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/queries/applicationqueries"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Search handles GET /applications. Every query parameter is optional
// and they compose:
//
//	id, type, relationship_type, hanko_id, start_date, end_date,
//	group_id, approval_state
//
// Dates accept RFC 3339 or plain YYYY-MM-DD.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Long())
	defer cancel()

	rows, err := applicationqueries.Search(ctx, h.DB, userID, filter)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

func filterFromQuery(r *http.Request) (applicationqueries.SearchFilter, error) {
	q := r.URL.Query()
	var f applicationqueries.SearchFilter

	if raw := normalize.QueryParam(q.Get("id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, apperr.Validation("invalid id %q", raw)
		}
		f.ApplicationID = &id
	}
	f.Type = normalize.QueryParam(q.Get("type"))
	f.RelationshipType = normalize.QueryParam(q.Get("relationship_type"))
	if raw := normalize.QueryParam(q.Get("hanko_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, apperr.Validation("invalid hanko_id %q", raw)
		}
		f.HankoID = &id
	}
	if raw := normalize.QueryParam(q.Get("group_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, apperr.Validation("invalid group_id %q", raw)
		}
		f.GroupID = &id
	}
	f.ApprovalState = normalize.QueryParam(q.Get("approval_state"))

	var err error
	if f.StartDate, err = parseDate(q.Get("start_date")); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(q.Get("end_date")); err != nil {
		return f, err
	}
	return f, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = normalize.QueryParam(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid date %q", raw)
}
