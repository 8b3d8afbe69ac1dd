// internal/app/features/attachments/handler.go
package attachments

import (
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/store/applications"
)

// Handler owns file upload and download. Files are opaque blobs; an
// application references them by id inside its form data, and download
// access rides on the referencing application's visibility.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Apps    *applicationstore.Store
	Log     *zap.Logger
}

// NewHandler creates a new attachments Handler.
func NewHandler(db *mongo.Database, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Storage: store,
		Apps:    applicationstore.New(db, logger),
		Log:     logger,
	}
}
