// internal/domain/models/decision.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision kinds. A recipient records exactly one of the two per
// application; the unique (application_id, recipient_id) index makes
// approval and rejection mutually exclusive.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Decision is an approval or rejection recorded by a recipient against
// an application.
//
// AttachmentHankos is an opaque JSON payload carrying seal/attachment
// metadata supplied by the client on approval; the engine stores it
// verbatim.
type Decision struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicationID primitive.ObjectID `bson:"application_id" json:"application_id"`
	RecipientID   primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Kind          string             `bson:"kind" json:"kind"` // "approved" | "rejected"
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty"`

	AttachmentHankos string `bson:"attachment_hankos,omitempty" json:"attachment_hankos,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsApproval reports whether the decision is an approval.
func (d Decision) IsApproval() bool { return d.Kind == DecisionApproved }

// IsRejection reports whether the decision is a rejection.
func (d Decision) IsRejection() bool { return d.Kind == DecisionRejected }
