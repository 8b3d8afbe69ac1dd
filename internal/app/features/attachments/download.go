// internal/app/features/attachments/download.go
package attachments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/policy/visibilitypolicy"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// Download handles GET /files/{fileID}?application_id=... . The
// caller names the application whose form data references the file;
// access is granted iff the caller may see that application's content
// and the application actually references the file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}

	fileID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fileID"))
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid file id"))
		return
	}
	rawAppID := normalize.QueryParam(r.URL.Query().Get("application_id"))
	appID, err := primitive.ObjectIDFromHex(rawAppID)
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid application_id %q", rawAppID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	app, err := h.Apps.GetByID(ctx, appID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	forbidden, err := visibilitypolicy.Check(ctx, h.DB, &app, userID)
	if err != nil {
		httpx.WriteError(w, h.Log, err)
		return
	}
	if forbidden {
		httpx.WriteError(w, h.Log, apperr.NotFound("file not found"))
		return
	}
	if !strings.Contains(app.FormData, fileID.Hex()) {
		httpx.WriteError(w, h.Log, apperr.NotFound("file not found"))
		return
	}

	var att models.Attachment
	if err := h.DB.Collection("attachments").FindOne(ctx, bson.M{"_id": fileID}).Decode(&att); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpx.WriteError(w, h.Log, apperr.NotFound("file not found"))
			return
		}
		httpx.WriteError(w, h.Log, apperr.Storage("loading attachment", err))
		return
	}

	disposition := fmt.Sprintf("attachment; filename=%q", att.FileName)

	// Local storage serves the file directly; anything else redirects
	// to a signed URL.
	if local, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(att.Path)
		if err != nil {
			h.Log.Error("error resolving file path", zap.Error(err), zap.String("path", att.Path))
			httpx.WriteError(w, h.Log, apperr.Storage("locating file", err))
			return
		}
		w.Header().Set("Content-Disposition", disposition)
		w.Header().Set("Content-Type", att.ContentType)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, att.Path, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: disposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL", zap.Error(err), zap.String("path", att.Path))
		httpx.WriteError(w, h.Log, apperr.Storage("generating download link", err))
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
