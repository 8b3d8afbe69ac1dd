// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ringihub/ringihub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup creates a test group with the given name.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// AddMember places a user in a group.
func (f *Fixtures) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to add test group member: %v", err)
	}
}

// CreateApplication creates a test application and its approval chain.
// Recipients are placed at flow positions in the order given.
func (f *Fixtures) CreateApplication(ctx context.Context, applicantID primitive.ObjectID,
	title string, private bool, recipients ...primitive.ObjectID) models.Application {
	f.t.Helper()

	now := time.Now().UTC()
	app := models.Application{
		ID:          primitive.NewObjectID(),
		ApplicantID: applicantID,
		Type:        "general",
		TypeCI:      text.Fold("general"),
		Title:       title,
		Private:     private,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("applications").InsertOne(ctx, app); err != nil {
		f.t.Fatalf("failed to create test application: %v", err)
	}
	for i, r := range recipients {
		s := models.Submission{
			ID:            primitive.NewObjectID(),
			ApplicationID: app.ID,
			RecipientID:   r,
			FlowIndex:     i,
			CreatedAt:     now,
		}
		if _, err := f.db.Collection("submissions").InsertOne(ctx, s); err != nil {
			f.t.Fatalf("failed to create test submission: %v", err)
		}
	}
	return app
}

// RecordDecision inserts a decision edge directly, bypassing flow-order
// checks. Use it to set up chain states for read-path tests.
func (f *Fixtures) RecordDecision(ctx context.Context, applicationID, recipientID primitive.ObjectID, kind string) models.Decision {
	f.t.Helper()

	d := models.Decision{
		ID:            primitive.NewObjectID(),
		ApplicationID: applicationID,
		RecipientID:   recipientID,
		Kind:          kind,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("decisions").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test decision: %v", err)
	}
	return d
}

// GrantVisibility whitelists a group on an application.
func (f *Fixtures) GrantVisibility(ctx context.Context, applicationID, groupID primitive.ObjectID) {
	f.t.Helper()

	g := models.VisibilityGrant{
		ID:            primitive.NewObjectID(),
		ApplicationID: applicationID,
		GroupID:       groupID,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("visibility_grants").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test visibility grant: %v", err)
	}
}
