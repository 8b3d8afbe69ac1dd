// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is one position in an application's approval chain: the
// application was submitted to RecipientID at position FlowIndex.
//
// Flow indices for one application are contiguous, start at 0, and are
// fixed permanently when the application is created. The same user may
// appear at more than one position (the chain builder does not
// deduplicate recipients).
type Submission struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicationID primitive.ObjectID `bson:"application_id" json:"application_id"`
	RecipientID   primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	FlowIndex     int                `bson:"flow_index" json:"flow_index"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
