// internal/app/store/applications/applicationstore_test.go
package applicationstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/store/applications"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	first := fx.CreateUser(ctx, "First", "first@example.com")
	second := fx.CreateUser(ctx, "Second", "second@example.com")
	grp := fx.CreateGroup(ctx, "Whitelisted")

	app, err := store.Create(ctx, applicationstore.CreateInput{
		ApplicantID:  author.ID,
		Type:         "purchase-request",
		Title:        "New laptops",
		FormData:     `{"quantity":3}`,
		Private:      true,
		RecipientIDs: []primitive.ObjectID{first.ID, second.ID},
		VisibilityGroupIDs: []primitive.ObjectID{
			grp.ID,
			primitive.NewObjectID(), // unknown group, skipped silently
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	subs, err := store.Submissions(ctx, app.ID)
	if err != nil {
		t.Fatalf("Submissions() error = %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Submissions() returned %d, want 2", len(subs))
	}
	if subs[0].RecipientID != first.ID || subs[0].FlowIndex != 0 {
		t.Errorf("first position = %v at %d", subs[0].RecipientID, subs[0].FlowIndex)
	}
	if subs[1].RecipientID != second.ID || subs[1].FlowIndex != 1 {
		t.Errorf("second position = %v at %d", subs[1].RecipientID, subs[1].FlowIndex)
	}

	grants, err := store.Grants(ctx, app.ID)
	if err != nil {
		t.Fatalf("Grants() error = %v", err)
	}
	if len(grants) != 1 || grants[0] != grp.ID {
		t.Errorf("Grants() = %v, want [%v]", grants, grp.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "R", "r@example.com")

	tests := []struct {
		name string
		in   applicationstore.CreateInput
	}{
		{
			name: "empty recipient list",
			in: applicationstore.CreateInput{
				ApplicantID: author.ID, Type: "t", Title: "x",
			},
		},
		{
			name: "missing title",
			in: applicationstore.CreateInput{
				ApplicantID: author.ID, Type: "t",
				RecipientIDs: []primitive.ObjectID{recipient.ID},
			},
		},
		{
			name: "unknown recipient",
			in: applicationstore.CreateInput{
				ApplicantID: author.ID, Type: "t", Title: "x",
				RecipientIDs: []primitive.ObjectID{primitive.NewObjectID()},
			},
		},
		{
			name: "unknown applicant",
			in: applicationstore.CreateInput{
				ApplicantID: primitive.NewObjectID(), Type: "t", Title: "x",
				RecipientIDs: []primitive.ObjectID{recipient.ID},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.in); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("Create() error = %v, want validation", err)
			}
		})
	}
}

func TestDeleteIsAuthorOnlyAndRemovesEdges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "R", "r@example.com")
	grp := fx.CreateGroup(ctx, "G")

	app := fx.CreateApplication(ctx, author.ID, "Doomed", false, recipient.ID)
	fx.RecordDecision(ctx, app.ID, recipient.ID, "approved")
	fx.GrantVisibility(ctx, app.ID, grp.ID)

	if err := store.Delete(ctx, app.ID, recipient.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Delete() by non-author error = %v, want not found", err)
	}

	if err := store.Delete(ctx, app.ID, author.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, coll := range []string{"applications", "submissions", "decisions", "visibility_grants"} {
		filter := bson.M{"application_id": app.ID}
		if coll == "applications" {
			filter = bson.M{"_id": app.ID}
		}
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("counting %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s has %d documents after delete, want 0", coll, n)
		}
	}
}

func TestVisibilityManagement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "R", "r@example.com")
	g1 := fx.CreateGroup(ctx, "G1")
	g2 := fx.CreateGroup(ctx, "G2")

	app := fx.CreateApplication(ctx, author.ID, "Secret", true, recipient.ID)

	if err := store.AddVisibility(ctx, app.ID, author.ID, g1.ID); err != nil {
		t.Fatalf("AddVisibility() error = %v", err)
	}
	// Re-granting is a no-op.
	if err := store.AddVisibility(ctx, app.ID, author.ID, g1.ID); err != nil {
		t.Fatalf("AddVisibility() twice error = %v", err)
	}

	if err := store.ReplaceVisibility(ctx, app.ID, author.ID, []primitive.ObjectID{g2.ID}); err != nil {
		t.Fatalf("ReplaceVisibility() error = %v", err)
	}
	grants, err := store.Grants(ctx, app.ID)
	if err != nil {
		t.Fatalf("Grants() error = %v", err)
	}
	if len(grants) != 1 || grants[0] != g2.ID {
		t.Errorf("Grants() after replace = %v, want [%v]", grants, g2.ID)
	}

	if err := store.RemoveVisibility(ctx, app.ID, author.ID, g2.ID); err != nil {
		t.Fatalf("RemoveVisibility() error = %v", err)
	}
	if err := store.RemoveVisibility(ctx, app.ID, author.ID, g2.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("RemoveVisibility() twice error = %v, want not found", err)
	}

	if err := store.UpdatePrivacy(ctx, app.ID, recipient.ID, false); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("UpdatePrivacy() by non-author error = %v, want not found", err)
	}
	if err := store.UpdatePrivacy(ctx, app.ID, author.ID, false); err != nil {
		t.Fatalf("UpdatePrivacy() error = %v", err)
	}
	got, err := store.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Private {
		t.Error("Private still true after UpdatePrivacy(false)")
	}
}

func TestCountAndTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "R", "r@example.com")

	fx.CreateApplication(ctx, author.ID, "One", false, recipient.ID)
	fx.CreateApplication(ctx, author.ID, "Two", false, recipient.ID)

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	types, err := store.Types(ctx)
	if err != nil {
		t.Fatalf("Types() error = %v", err)
	}
	if len(types) != 1 || types[0] != "general" {
		t.Errorf("Types() = %v, want [general]", types)
	}
}
