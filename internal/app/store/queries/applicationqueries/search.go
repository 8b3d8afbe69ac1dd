// Package applicationqueries provides complex read-only queries over
// applications and their edges: multi-predicate search and the
// submitted/received listings.
package applicationqueries

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ringihub/ringihub/internal/app/policy/visibilitypolicy"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/workflow"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// MaxSearchResults caps a single search. There is no pagination at
// this layer; the submitted/received listings batch instead.
const MaxSearchResults = 200

// Relationship types accepted by SearchFilter.RelationshipType.
const (
	RelationshipSubmittedBy = "submitted-by"
	RelationshipSubmittedTo = "submitted-to"
	RelationshipApproved    = "approved"
	RelationshipRejected    = "rejected"
)

// SearchFilter holds the optional predicates of one search. Nil or
// zero fields impose no constraint.
type SearchFilter struct {
	ApplicationID *primitive.ObjectID

	// Type matches applications whose type contains this value,
	// case-insensitively.
	Type string

	// RelationshipType narrows to applications the viewer relates to
	// in the given way: authored, on the chain of, approved or
	// rejected.
	RelationshipType string

	// HankoID narrows to the application carrying the approval
	// decision with this id.
	HankoID *primitive.ObjectID

	// StartDate and EndDate bound created_at (inclusive).
	StartDate *time.Time
	EndDate   *time.Time

	// GroupID narrows to applications whitelisting this group.
	GroupID *primitive.ObjectID

	// ApprovalState "approved" narrows to fully approved chains.
	ApprovalState string
}

// SearchResult is one search row. Forbidden rows are redacted in
// place, never dropped: callers still learn a confidential match
// exists.
type SearchResult struct {
	Application models.Application `json:"application"`
	Applicant   *models.User       `json:"applicant,omitempty"`
	Forbidden   bool               `json:"forbidden"`
}

// Search runs the composed predicates for viewerID and returns rows
// ordered by creation time descending, capped at MaxSearchResults.
func Search(ctx context.Context, db *mongo.Database, viewerID primitive.ObjectID, filter SearchFilter) ([]SearchResult, error) {
	clauses, err := buildBaseClauses(filter)
	if err != nil {
		return nil, err
	}

	// Relationship, hanko and group predicates resolve to id sets up
	// front.
	if filter.RelationshipType != "" {
		ids, err := relationshipApplicationIDs(ctx, db, filter.RelationshipType, viewerID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []SearchResult{}, nil
		}
		clauses = append(clauses, bson.M{"_id": bson.M{"$in": ids}})
	}
	if filter.HankoID != nil {
		ids, err := hankoApplicationIDs(ctx, db, *filter.HankoID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []SearchResult{}, nil
		}
		clauses = append(clauses, bson.M{"_id": bson.M{"$in": ids}})
	}
	if filter.GroupID != nil {
		ids, err := grantedApplicationIDs(ctx, db, *filter.GroupID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []SearchResult{}, nil
		}
		clauses = append(clauses, bson.M{"_id": bson.M{"$in": ids}})
	}

	cur, err := db.Collection("applications").Find(ctx, andify(clauses),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apperr.Storage("searching applications", err)
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, apperr.Storage("decoding applications", err)
	}

	// The approval-state predicate needs derived chain state, so it is
	// evaluated in memory before the result cap is applied.
	if filter.ApprovalState != "" {
		apps, err = filterByApprovalState(ctx, db, apps, filter.ApprovalState)
		if err != nil {
			return nil, err
		}
	}

	if len(apps) > MaxSearchResults {
		apps = apps[:MaxSearchResults]
	}
	return decorate(ctx, db, viewerID, apps)
}

func buildBaseClauses(filter SearchFilter) ([]bson.M, error) {
	var clauses []bson.M
	if filter.ApplicationID != nil {
		clauses = append(clauses, bson.M{"_id": *filter.ApplicationID})
	}
	if filter.Type != "" {
		// Substring match over the folded type, so "expense" finds
		// "Expense Report".
		clauses = append(clauses, bson.M{"type_ci": bson.M{"$regex": regexp.QuoteMeta(text.Fold(filter.Type))}})
	}
	if filter.RelationshipType != "" {
		switch filter.RelationshipType {
		case RelationshipSubmittedBy, RelationshipSubmittedTo, RelationshipApproved, RelationshipRejected:
		default:
			return nil, apperr.Validation("unknown relationship type %q", filter.RelationshipType)
		}
	}
	if filter.ApprovalState != "" && filter.ApprovalState != string(workflow.StateCompleted) &&
		filter.ApprovalState != "approved" {
		return nil, apperr.Validation("unknown approval state %q", filter.ApprovalState)
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		window := bson.M{}
		if filter.StartDate != nil {
			window["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			window["$lte"] = *filter.EndDate
		}
		clauses = append(clauses, bson.M{"created_at": window})
	}
	return clauses, nil
}

func andify(clauses []bson.M) bson.M {
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

func relationshipApplicationIDs(ctx context.Context, db *mongo.Database, relType string, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	switch relType {
	case RelationshipSubmittedBy:
		return distinctApplicationIDs(ctx, db.Collection("applications"), "_id", bson.M{"applicant_id": userID})
	case RelationshipSubmittedTo:
		return distinctApplicationIDs(ctx, db.Collection("submissions"), "application_id", bson.M{"recipient_id": userID})
	case RelationshipApproved:
		return distinctApplicationIDs(ctx, db.Collection("decisions"), "application_id",
			bson.M{"recipient_id": userID, "kind": models.DecisionApproved})
	case RelationshipRejected:
		return distinctApplicationIDs(ctx, db.Collection("decisions"), "application_id",
			bson.M{"recipient_id": userID, "kind": models.DecisionRejected})
	}
	return nil, apperr.Validation("unknown relationship type %q", relType)
}

// hankoApplicationIDs resolves an approval decision id to the
// application carrying it.
func hankoApplicationIDs(ctx context.Context, db *mongo.Database, hankoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return distinctApplicationIDs(ctx, db.Collection("decisions"), "application_id",
		bson.M{"_id": hankoID, "kind": models.DecisionApproved})
}

func grantedApplicationIDs(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return distinctApplicationIDs(ctx, db.Collection("visibility_grants"), "application_id", bson.M{"group_id": groupID})
}

func distinctApplicationIDs(ctx context.Context, coll *mongo.Collection, field string, filter bson.M) ([]primitive.ObjectID, error) {
	raw, err := coll.Distinct(ctx, field, filter)
	if err != nil {
		return nil, apperr.Storage("resolving application ids", err)
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func filterByApprovalState(ctx context.Context, db *mongo.Database, apps []models.Application, state string) ([]models.Application, error) {
	var kept []models.Application
	for _, app := range apps {
		p, err := deriveFor(ctx, db, app.ID)
		if err != nil {
			return nil, err
		}
		if p.State == workflow.StateCompleted {
			kept = append(kept, app)
		}
	}
	return kept, nil
}

func deriveFor(ctx context.Context, db *mongo.Database, applicationID primitive.ObjectID) (workflow.Progress, error) {
	subs, err := loadSubmissions(ctx, db, applicationID)
	if err != nil {
		return workflow.Progress{}, err
	}
	decisions, err := loadDecisions(ctx, db, applicationID)
	if err != nil {
		return workflow.Progress{}, err
	}
	return workflow.Derive(subs, decisions)
}

func loadSubmissions(ctx context.Context, db *mongo.Database, applicationID primitive.ObjectID) ([]models.Submission, error) {
	cur, err := db.Collection("submissions").Find(ctx, bson.M{"application_id": applicationID},
		options.Find().SetSort(bson.D{{Key: "flow_index", Value: 1}}))
	if err != nil {
		return nil, apperr.Storage("loading submissions", err)
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, apperr.Storage("decoding submissions", err)
	}
	return subs, nil
}

func loadDecisions(ctx context.Context, db *mongo.Database, applicationID primitive.ObjectID) ([]models.Decision, error) {
	cur, err := db.Collection("decisions").Find(ctx, bson.M{"application_id": applicationID})
	if err != nil {
		return nil, apperr.Storage("loading decisions", err)
	}
	defer cur.Close(ctx)

	var decisions []models.Decision
	if err := cur.All(ctx, &decisions); err != nil {
		return nil, apperr.Storage("decoding decisions", err)
	}
	return decisions, nil
}

// decorate attaches applicants and applies the visibility policy to
// each row.
func decorate(ctx context.Context, db *mongo.Database, viewerID primitive.ObjectID, apps []models.Application) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(apps))
	applicants, err := loadApplicants(ctx, db, apps)
	if err != nil {
		return nil, err
	}

	for _, app := range apps {
		app := app
		forbidden, err := visibilitypolicy.Check(ctx, db, &app, viewerID)
		if err != nil {
			return nil, err
		}
		row := SearchResult{Application: app, Forbidden: forbidden}
		if u, ok := applicants[app.ApplicantID]; ok {
			row.Applicant = &u
		}
		if forbidden {
			visibilitypolicy.Redact(&row.Application)
		}
		results = append(results, row)
	}
	return results, nil
}

func loadApplicants(ctx context.Context, db *mongo.Database, apps []models.Application) (map[primitive.ObjectID]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(apps))
	seen := map[primitive.ObjectID]struct{}{}
	for _, app := range apps {
		if _, ok := seen[app.ApplicantID]; ok {
			continue
		}
		seen[app.ApplicantID] = struct{}{}
		ids = append(ids, app.ApplicantID)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.User{}, nil
	}

	cur, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Storage("loading applicants", err)
	}
	defer cur.Close(ctx)

	users := map[primitive.ObjectID]models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, apperr.Storage("decoding applicant", err)
		}
		users[u.ID] = u
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Storage("loading applicants", err)
	}
	return users, nil
}
