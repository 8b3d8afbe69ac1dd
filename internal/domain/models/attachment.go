// internal/domain/models/attachment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment is an uploaded blob. Applications reference attachments
// by id inside their form data; the engine never reads the bytes, it
// only stores and serves them.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	UploaderID  primitive.ObjectID `bson:"uploader_id" json:"uploader_id"`
	FileName    string             `bson:"file_name" json:"file_name"`
	ContentType string             `bson:"content_type" json:"content_type"`
	Size        int64              `bson:"size" json:"size"`
	Path        string             `bson:"path" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
