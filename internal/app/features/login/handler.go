// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/store/users"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/auth"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
)

// Handler owns the login endpoint.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler creates a new login Handler.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sm,
		Log:        logger,
	}
}

// Routes returns the router for the login endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Login)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login. A bad email and a bad password return
// the same error so the endpoint does not confirm which emails exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			httpx.WriteError(w, h.Log, apperr.NotFound("invalid email or password"))
			return
		}
		httpx.WriteError(w, h.Log, err)
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("starting session", err))
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	httpx.WriteJSON(w, http.StatusOK, u)
}
