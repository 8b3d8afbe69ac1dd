// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application is a submitted document moving through an approval chain.
//
// ApplicantID and CreatedAt stand in for the one-and-only authorship
// edge: they are written atomically with the document itself, so an
// application without an author can never be observed.
//
// FormData is an opaque JSON payload: the engine stores and returns it
// but never interprets it, except to check whether a given attachment
// id appears in it (see the attachments feature).
//
// Workflow state (pending/rejected/completed) is never stored here; it
// is derived from the submissions and decisions collections on every
// read. See internal/app/workflow.
type Application struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ApplicantID primitive.ObjectID `bson:"applicant_id" json:"applicant_id"`
	Type        string             `bson:"type" json:"type"`
	TypeCI      string             `bson:"type_ci" json:"type_ci"`
	Title       string             `bson:"title" json:"title"`
	FormData    string             `bson:"form_data,omitempty" json:"form_data,omitempty"`
	Private     bool               `bson:"private" json:"private"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
