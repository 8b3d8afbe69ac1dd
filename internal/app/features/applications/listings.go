// internal/app/features/applications/listings.go
package applications

import (
	"context"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/queries/applicationqueries"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/app/workflow"
)

// Submitted handles GET /applications/submitted.
func (h *Handler) Submitted(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Submitted, "")
}

// SubmittedPending handles GET /applications/submitted/pending.
func (h *Handler) SubmittedPending(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Submitted, workflow.StatePending)
}

// SubmittedApproved handles GET /applications/submitted/approved.
func (h *Handler) SubmittedApproved(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Submitted, workflow.StateCompleted)
}

// SubmittedRejected handles GET /applications/submitted/rejected.
func (h *Handler) SubmittedRejected(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Submitted, workflow.StateRejected)
}

// Received handles GET /applications/received.
func (h *Handler) Received(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Received, "")
}

// ReceivedPending handles GET /applications/received/pending.
func (h *Handler) ReceivedPending(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Received, workflow.StatePending)
}

// ReceivedApproved handles GET /applications/received/approved.
func (h *Handler) ReceivedApproved(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Received, workflow.StateCompleted)
}

// ReceivedRejected handles GET /applications/received/rejected.
func (h *Handler) ReceivedRejected(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, applicationqueries.Received, workflow.StateRejected)
}

type listingFunc func(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, state workflow.State, page applicationqueries.Page) ([]applicationqueries.ListRow, error)

func (h *Handler) listing(w http.ResponseWriter, r *http.Request, list listingFunc, state workflow.State) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := contextWithTimeout(r, timeouts.Long())
	defer cancel()

	rows, err := list(ctx, h.DB, userID, state, page)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rows)
}

// pageFromQuery reads start_index and batch_size. Both default to 0,
// meaning start from the top with no limit.
func pageFromQuery(r *http.Request) (applicationqueries.Page, error) {
	var page applicationqueries.Page
	q := r.URL.Query()

	if raw := normalize.QueryParam(q.Get("start_index")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, apperr.Validation("invalid start_index %q", raw)
		}
		page.StartIndex = n
	}
	if raw := normalize.QueryParam(q.Get("batch_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, apperr.Validation("invalid batch_size %q", raw)
		}
		page.BatchSize = n
	}
	return page, nil
}
