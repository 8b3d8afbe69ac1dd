// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/memberships"
	"github.com/ringihub/ringihub/internal/app/store/users"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/auth"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Handler owns the user directory endpoints.
type Handler struct {
	DB          *mongo.Database
	Users       *userstore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

// NewHandler creates a new users Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Users:       userstore.New(db),
		Memberships: membershipstore.New(db),
		Log:         logger,
	}
}

// Routes returns the router for user endpoints. Registration is open;
// the directory requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.List)
		pr.Get("/{userID}", h.Get)
		pr.Get("/{userID}/groups", h.Groups)
	})

	return r
}

type createRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create handles POST /users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	h.Log.Info("user created", zap.String("user_id", u.ID.Hex()))
	httpx.WriteJSON(w, http.StatusCreated, u)
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{userID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlUserID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Groups handles GET /users/{userID}/groups, listing the groups the
// user belongs to.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	id, err := urlUserID(r)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	groupIDs, err := h.Memberships.GroupsOfUser(ctx, id)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"group_ids": groupIDs})
}

func urlUserID(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "userID")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid user id %q", raw)
	}
	return id, nil
}
