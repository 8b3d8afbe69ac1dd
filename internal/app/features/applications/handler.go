// internal/app/features/applications/handler.go
package applications

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/store/applications"
	"github.com/ringihub/ringihub/internal/app/store/decisions"
)

// Handler owns the application endpoints: creation, reads, decisions,
// privacy and visibility management, listings and search.
type Handler struct {
	DB        *mongo.Database
	Apps      *applicationstore.Store
	Decisions *decisionstore.Store
	Log       *zap.Logger
}

// NewHandler creates a new applications Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Apps:      applicationstore.New(db, logger),
		Decisions: decisionstore.New(db, logger),
		Log:       logger,
	}
}
