// internal/app/store/queries/applicationqueries/search_db_test.go
package applicationqueries_test

import (
	"reflect"
	"testing"

	"github.com/ringihub/ringihub/internal/app/policy/visibilitypolicy"
	"github.com/ringihub/ringihub/internal/app/store/queries/applicationqueries"
	"github.com/ringihub/ringihub/internal/app/workflow"
	"github.com/ringihub/ringihub/internal/domain/models"
	"github.com/ringihub/ringihub/internal/testutil"
)

func TestSearchByRelationship(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	approver := fx.CreateUser(ctx, "Approver", "approver@example.com")
	other := fx.CreateUser(ctx, "Other", "other@example.com")

	approved := fx.CreateApplication(ctx, author.ID, "Approved one", false, approver.ID)
	hanko := fx.RecordDecision(ctx, approved.ID, approver.ID, models.DecisionApproved)
	rejected := fx.CreateApplication(ctx, author.ID, "Rejected one", false, approver.ID)
	fx.RecordDecision(ctx, rejected.ID, approver.ID, models.DecisionRejected)
	fx.CreateApplication(ctx, other.ID, "Unrelated", false, other.ID)

	// Relationship filters resolve against the searching user.
	rows, err := applicationqueries.Search(ctx, db, approver.ID, applicationqueries.SearchFilter{
		RelationshipType: applicationqueries.RelationshipApproved,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != approved.ID {
		t.Errorf("approved search = %v, want just %v", rows, approved.ID)
	}

	// The hanko filter finds the application carrying that approval,
	// no matter who searches.
	rows, err = applicationqueries.Search(ctx, db, other.ID, applicationqueries.SearchFilter{
		HankoID: &hanko.ID,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != approved.ID {
		t.Errorf("hanko search = %v, want just %v", rows, approved.ID)
	}

	rows, err = applicationqueries.Search(ctx, db, author.ID, applicationqueries.SearchFilter{
		RelationshipType: applicationqueries.RelationshipSubmittedBy,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("submitted-by search returned %d rows, want 2", len(rows))
	}
	// Newest first.
	if len(rows) == 2 && rows[0].Application.CreatedAt.Before(rows[1].Application.CreatedAt) {
		t.Error("results are not ordered newest first")
	}
}

func TestSearchRedactsForbiddenRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "Recipient", "recipient@example.com")
	stranger := fx.CreateUser(ctx, "Stranger", "stranger@example.com")

	private := fx.CreateApplication(ctx, author.ID, "Salary review", true, recipient.ID)

	rows, err := applicationqueries.Search(ctx, db, stranger.ID, applicationqueries.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Search() returned %d rows, want 1 (forbidden rows are kept)", len(rows))
	}
	row := rows[0]
	if !row.Forbidden {
		t.Error("Forbidden = false for a stranger viewing a private application")
	}
	if row.Application.Title != visibilitypolicy.ConfidentialTitle {
		t.Errorf("Title = %q, want placeholder", row.Application.Title)
	}
	if row.Application.FormData != "" {
		t.Error("form data leaked through redaction")
	}

	rows, err = applicationqueries.Search(ctx, db, recipient.ID, applicationqueries.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if rows[0].Forbidden {
		t.Error("Forbidden = true for a chain recipient")
	}
	if rows[0].Application.Title != private.Title {
		t.Errorf("recipient sees title %q, want %q", rows[0].Application.Title, private.Title)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "Recipient", "recipient@example.com")
	fx.CreateApplication(ctx, author.ID, "A", false, recipient.ID)
	fx.CreateApplication(ctx, author.ID, "B", false, recipient.ID)

	first, err := applicationqueries.Search(ctx, db, author.ID, applicationqueries.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := applicationqueries.Search(ctx, db, author.ID, applicationqueries.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two identical searches returned different results")
	}
}

func TestListings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	recipient := fx.CreateUser(ctx, "Recipient", "recipient@example.com")

	pending := fx.CreateApplication(ctx, author.ID, "Pending", false, recipient.ID)
	done := fx.CreateApplication(ctx, author.ID, "Done", false, recipient.ID)
	fx.RecordDecision(ctx, done.ID, recipient.ID, models.DecisionApproved)

	rows, err := applicationqueries.Submitted(ctx, db, author.ID, "", applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Submitted() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Submitted() returned %d rows, want 2", len(rows))
	}

	rows, err = applicationqueries.Submitted(ctx, db, author.ID, workflow.StatePending, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Submitted(pending) error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != pending.ID {
		t.Errorf("Submitted(pending) = %v, want just the pending application", rows)
	}

	rows, err = applicationqueries.Received(ctx, db, recipient.ID, workflow.StateCompleted, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received(completed) error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != done.ID {
		t.Errorf("Received(completed) = %v, want just the completed application", rows)
	}
	if rows[0].Progress.State != workflow.StateCompleted {
		t.Errorf("Progress.State = %v, want completed", rows[0].Progress.State)
	}

	rows, err = applicationqueries.Received(ctx, db, author.ID, "", applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Received() for a non-recipient returned %d rows, want 0", len(rows))
	}
}

// The received listings follow each recipient's own position, not the
// chain as a whole: a recipient who already approved is done with the
// application even while later recipients still hold it up.
func TestReceivedListingsTrackTheViewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	author := fx.CreateUser(ctx, "Author", "author@example.com")
	first := fx.CreateUser(ctx, "First", "first@example.com")
	second := fx.CreateUser(ctx, "Second", "second@example.com")

	app := fx.CreateApplication(ctx, author.ID, "Two step", false, first.ID, second.ID)
	fx.RecordDecision(ctx, app.ID, first.ID, models.DecisionApproved)

	rows, err := applicationqueries.Received(ctx, db, first.ID, workflow.StatePending, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received(pending) error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Received(pending) for a recipient who decided returned %d rows, want 0", len(rows))
	}

	rows, err = applicationqueries.Received(ctx, db, first.ID, workflow.StateCompleted, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received(approved) error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != app.ID {
		t.Errorf("Received(approved) = %v, want the application first approved", rows)
	}

	rows, err = applicationqueries.Received(ctx, db, second.ID, workflow.StatePending, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received(pending) error = %v", err)
	}
	if len(rows) != 1 || rows[0].Application.ID != app.ID {
		t.Errorf("Received(pending) = %v, want the application waiting on second", rows)
	}

	rows, err = applicationqueries.Received(ctx, db, second.ID, workflow.StateCompleted, applicationqueries.Page{})
	if err != nil {
		t.Fatalf("Received(approved) error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Received(approved) for an undecided recipient returned %d rows, want 0", len(rows))
	}
}
