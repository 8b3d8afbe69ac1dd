// internal/domain/models/visibilitygrant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisibilityGrant whitelists a group for a private application. Grants
// are only consulted when the application's private flag is set; they
// carry no meaning for public applications.
type VisibilityGrant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicationID primitive.ObjectID `bson:"application_id" json:"application_id"`
	GroupID       primitive.ObjectID `bson:"group_id" json:"group_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
