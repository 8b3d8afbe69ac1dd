// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/groups"
	"github.com/ringihub/ringihub/internal/app/store/memberships"
	"github.com/ringihub/ringihub/internal/app/store/users"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/auth"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Handler owns the group directory and membership endpoints.
type Handler struct {
	DB          *mongo.Database
	Groups      *groupstore.Store
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

// NewHandler creates a new groups Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Groups:      groupstore.New(db),
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

// Routes returns the router for group endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{groupID}", func(rr chi.Router) {
		rr.Get("/", h.Get)
		rr.Delete("/", h.Delete)
		rr.Post("/members", h.AddMember)
		rr.Delete("/members/{userID}", h.RemoveMember)
	})

	return r
}

type createRequest struct {
	Name string `json:"name"`
}

// Create handles POST /groups.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.Create(ctx, req.Name)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()))
	httpx.WriteJSON(w, http.StatusCreated, g)
}

// List handles GET /groups.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groups, err := h.Groups.List(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, groups)
}

// Get handles GET /groups/{groupID}, returning the group with its
// member ids.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlGroupID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	members, err := h.Memberships.MembersOfGroup(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"group":      g,
		"member_ids": members,
	})
}

// Delete handles DELETE /groups/{groupID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlGroupID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Groups.Delete(ctx, h.DB, id); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	h.Log.Info("group deleted", zap.String("group_id", id.Hex()))
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

// AddMember handles POST /groups/{groupID}/members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlGroupID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid user id %q", req.UserID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Groups.GetByID(ctx, groupID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if err := h.Memberships.Add(ctx, groupID, userID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"group_id": groupID.Hex(),
		"user_id":  userID.Hex(),
	})
}

// RemoveMember handles DELETE /groups/{groupID}/members/{userID}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlGroupID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	raw := chi.URLParam(r, "userID")
	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid user id %q", raw))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Memberships.Remove(ctx, groupID, userID); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}

func urlGroupID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "groupID")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid group id %q", raw)
	}
	return id, nil
}
