// internal/app/store/queries/applicationqueries/listings.go
package applicationqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/workflow"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// Page is a slice window over a listing. A zero BatchSize means no
// limit.
type Page struct {
	StartIndex int
	BatchSize  int
}

// ListRow is one listing row with its derived chain progress.
type ListRow struct {
	Application models.Application `json:"application"`
	Progress    workflow.Progress  `json:"progress"`
}

// Submitted lists the applications userID authored, newest first.
// A non-empty state keeps only chains currently in that state.
func Submitted(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, state workflow.State, page Page) ([]ListRow, error) {
	apps, err := loadApplications(ctx, db, bson.M{"applicant_id": userID})
	if err != nil {
		return nil, err
	}
	return assemble(ctx, db, apps, state, page)
}

// Received lists the applications userID sits on the chain of, newest
// first. The state filter reads from the viewer's side of the chain,
// not the chain as a whole: StatePending keeps chains waiting on
// userID's decision, StateCompleted keeps chains userID approved and
// StateRejected keeps chains userID rejected.
func Received(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, state workflow.State, page Page) ([]ListRow, error) {
	ids, err := distinctApplicationIDs(ctx, db.Collection("submissions"), "application_id",
		bson.M{"recipient_id": userID})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ListRow{}, nil
	}
	apps, err := loadApplications(ctx, db, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	rows := make([]ListRow, 0, len(apps))
	for _, app := range apps {
		decisions, err := loadDecisions(ctx, db, app.ID)
		if err != nil {
			return nil, err
		}
		subs, err := loadSubmissions(ctx, db, app.ID)
		if err != nil {
			return nil, err
		}
		p, err := workflow.Derive(subs, decisions)
		if err != nil {
			return nil, err
		}
		if !keepForRecipient(p, decisions, userID, state) {
			continue
		}
		rows = append(rows, ListRow{Application: app, Progress: p})
	}
	return cut(rows, page), nil
}

// keepForRecipient applies a received-listing state filter from one
// recipient's point of view.
func keepForRecipient(p workflow.Progress, decisions []models.Decision, userID primitive.ObjectID, state workflow.State) bool {
	var mine *models.Decision
	for i := range decisions {
		if decisions[i].RecipientID == userID {
			mine = &decisions[i]
			break
		}
	}

	switch state {
	case workflow.StatePending:
		return p.State == workflow.StatePending && p.NextRecipientID == userID && mine == nil
	case workflow.StateCompleted:
		return mine != nil && mine.IsApproval()
	case workflow.StateRejected:
		return mine != nil && mine.IsRejection()
	default:
		return true
	}
}

func loadApplications(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Application, error) {
	cur, err := db.Collection("applications").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperr.Storage("listing applications", err)
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, apperr.Storage("decoding applications", err)
	}
	return apps, nil
}

// assemble derives progress per row, applies the state filter, then
// cuts the page window. The window applies after filtering so page
// boundaries are stable for a given state.
func assemble(ctx context.Context, db *mongo.Database, apps []models.Application, state workflow.State, page Page) ([]ListRow, error) {
	rows := make([]ListRow, 0, len(apps))
	for _, app := range apps {
		p, err := deriveFor(ctx, db, app.ID)
		if err != nil {
			return nil, err
		}
		if state != "" && p.State != state {
			continue
		}
		rows = append(rows, ListRow{Application: app, Progress: p})
	}
	return cut(rows, page), nil
}

func cut(rows []ListRow, page Page) []ListRow {
	if page.StartIndex < 0 {
		page.StartIndex = 0
	}
	if page.StartIndex >= len(rows) {
		return []ListRow{}
	}
	rows = rows[page.StartIndex:]
	if page.BatchSize > 0 && page.BatchSize < len(rows) {
		rows = rows[:page.BatchSize]
	}
	return rows
}
