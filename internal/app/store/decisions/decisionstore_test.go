// internal/app/store/decisions/decisionstore_test.go
package decisionstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/store/decisions"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/domain/models"
	"github.com/ringihub/ringihub/internal/testutil"
)

func TestRecordWalksTheChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := decisionstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	first := fx.CreateUser(ctx, "First", "first@example.com")
	second := fx.CreateUser(ctx, "Second", "second@example.com")
	app := fx.CreateApplication(ctx, author.ID, "Chain", false, first.ID, second.ID)

	// Second recipient cannot go first.
	_, err := store.Record(ctx, app.ID, second.ID, models.DecisionApproved, "", "")
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("out-of-order Record() error = %v, want precondition", err)
	}

	d, err := store.Record(ctx, app.ID, first.ID, models.DecisionApproved, "lgtm", "")
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !d.IsApproval() {
		t.Error("recorded decision is not an approval")
	}

	// First recipient cannot decide again.
	_, err = store.Record(ctx, app.ID, first.ID, models.DecisionRejected, "", "")
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("duplicate Record() error = %v, want precondition", err)
	}

	if _, err := store.Record(ctx, app.ID, second.ID, models.DecisionApproved, "", ""); err != nil {
		t.Fatalf("Record() for second recipient error = %v", err)
	}

	// Chain is complete, nothing more to decide.
	_, err = store.Record(ctx, app.ID, second.ID, models.DecisionApproved, "", "")
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("Record() on completed chain error = %v, want precondition", err)
	}
}

func TestRecordAfterRejection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := decisionstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	first := fx.CreateUser(ctx, "First", "first@example.com")
	second := fx.CreateUser(ctx, "Second", "second@example.com")
	app := fx.CreateApplication(ctx, author.ID, "Chain", false, first.ID, second.ID)

	if _, err := store.Record(ctx, app.ID, first.ID, models.DecisionRejected, "no budget", ""); err != nil {
		t.Fatalf("Record() rejection error = %v", err)
	}

	_, err := store.Record(ctx, app.ID, second.ID, models.DecisionApproved, "", "")
	if !apperr.Is(err, apperr.KindPrecondition) {
		t.Fatalf("Record() after rejection error = %v, want precondition", err)
	}
}

func TestRecordValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := decisionstore.New(db, zap.NewNop())

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	first := fx.CreateUser(ctx, "First", "first@example.com")
	outsider := fx.CreateUser(ctx, "Outsider", "out@example.com")
	app := fx.CreateApplication(ctx, author.ID, "Chain", false, first.ID)

	_, err := store.Record(ctx, app.ID, first.ID, "maybe", "", "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Record() with bad kind error = %v, want validation", err)
	}

	_, err = store.Record(ctx, app.ID, outsider.ID, models.DecisionApproved, "", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Record() by non-recipient error = %v, want not found", err)
	}

	_, err = store.Record(ctx, primitive.NewObjectID(), first.ID, models.DecisionApproved, "", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Record() on unknown application error = %v, want not found", err)
	}
}
