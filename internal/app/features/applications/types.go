// internal/app/features/applications/types.go
package applications

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
)

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func zapID(key string, id primitive.ObjectID) zap.Field {
	return zap.String(key, id.Hex())
}

// urlObjectID parses a chi URL parameter as an ObjectID.
func urlObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, param)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s %q", param, raw)
	}
	return id, nil
}
