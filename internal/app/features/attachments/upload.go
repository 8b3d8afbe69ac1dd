// internal/app/features/attachments/upload.go
package attachments

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/features/httpx"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/authz"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/domain/models"
)

const maxUploadBytes = 32 << 20 // 32 MiB

// Upload handles POST /files. Multipart form with one "file" part.
// Returns the attachment record; its id is what applications embed in
// their form data.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		httpx.WriteError(w, h.Log, apperr.NotFound("no signed-in user"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, h.Log, apperr.Validation("missing file part"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("attachments/%04d/%02d/%s-%s",
		now.Year(), now.Month(), uuid.New().String()[:8], sanitizeFilename(header.Filename))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Storage.Put(ctx, path, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("storing file", err))
		return
	}

	att := models.Attachment{
		ID:          primitive.NewObjectID(),
		UploaderID:  userID,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Path:        path,
		CreatedAt:   now,
	}
	if _, err := h.DB.Collection("attachments").InsertOne(ctx, att); err != nil {
		httpx.WriteError(w, h.Log, apperr.Storage("inserting attachment", err))
		return
	}

	h.Log.Info("attachment uploaded",
		zap.String("attachment_id", att.ID.Hex()),
		zap.String("uploader_id", userID.Hex()),
		zap.Int64("size", att.Size))
	httpx.WriteJSON(w, http.StatusCreated, att)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "file"
	}
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return string(out)
}
