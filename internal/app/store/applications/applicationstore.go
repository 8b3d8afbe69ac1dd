// internal/app/store/applications/applicationstore.go
package applicationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/store/groups"
	"github.com/ringihub/ringihub/internal/app/store/users"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/app/system/txn"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type Store struct {
	db  *mongo.Database
	log *zap.Logger
	c   *mongo.Collection
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{db: db, log: log, c: db.Collection("applications")}
}

// CreateInput carries everything needed to create an application and
// its approval chain in one transaction.
type CreateInput struct {
	ApplicantID primitive.ObjectID
	Type        string
	Title       string
	FormData    string
	Private     bool

	// RecipientIDs become the approval chain. Order is flow order and
	// duplicates are kept at their own positions.
	RecipientIDs []primitive.ObjectID

	// VisibilityGroupIDs whitelist groups on a private application.
	// Unresolved ids are skipped silently.
	VisibilityGroupIDs []primitive.ObjectID
}

// Create inserts the application document, one submission per chain
// position, and the visibility grants, all inside a transaction. The
// applicant and every recipient must exist.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Application, error) {
	in.Title = normalize.Name(in.Title)
	in.Type = normalize.Name(in.Type)
	if in.Title == "" {
		return models.Application{}, apperr.Validation("title is required")
	}
	if in.Type == "" {
		return models.Application{}, apperr.Validation("type is required")
	}
	if len(in.RecipientIDs) == 0 {
		return models.Application{}, apperr.Validation("at least one recipient is required")
	}

	ustore := userstore.New(s.db)
	ok, err := ustore.Exists(ctx, append([]primitive.ObjectID{in.ApplicantID}, in.RecipientIDs...)...)
	if err != nil {
		return models.Application{}, err
	}
	if !ok {
		return models.Application{}, apperr.Validation("applicant or recipient does not exist")
	}

	grantGroups, err := groupstore.New(s.db).FilterExisting(ctx, in.VisibilityGroupIDs)
	if err != nil {
		return models.Application{}, err
	}

	now := time.Now().UTC()
	app := models.Application{
		ID:          primitive.NewObjectID(),
		ApplicantID: in.ApplicantID,
		Type:        in.Type,
		TypeCI:      text.Fold(in.Type),
		Title:       in.Title,
		FormData:    in.FormData,
		Private:     in.Private,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, app); err != nil {
			return apperr.Storage("inserting application", err)
		}

		subs := make([]any, 0, len(in.RecipientIDs))
		for i, r := range in.RecipientIDs {
			subs = append(subs, models.Submission{
				ID:            primitive.NewObjectID(),
				ApplicationID: app.ID,
				RecipientID:   r,
				FlowIndex:     i,
				CreatedAt:     now,
			})
		}
		if _, err := s.db.Collection("submissions").InsertMany(ctx, subs); err != nil {
			return apperr.Storage("inserting submissions", err)
		}

		for _, g := range grantGroups {
			grant := models.VisibilityGrant{
				ID:            primitive.NewObjectID(),
				ApplicationID: app.ID,
				GroupID:       g,
				CreatedAt:     now,
			}
			if _, err := s.db.Collection("visibility_grants").InsertOne(ctx, grant); err != nil {
				return apperr.Storage("inserting visibility grant", err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Application, error) {
	var app models.Application
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Application{}, apperr.NotFound("application %s not found", id.Hex())
		}
		return models.Application{}, apperr.Storage("loading application", err)
	}
	return app, nil
}

// requireAuthor loads the application and verifies requester wrote it.
// Non-authors get not-found rather than forbidden so the check leaks
// nothing about private applications.
func (s *Store) requireAuthor(ctx context.Context, id, requesterID primitive.ObjectID) (models.Application, error) {
	app, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.ApplicantID != requesterID {
		return models.Application{}, apperr.NotFound("application %s not found", id.Hex())
	}
	return app, nil
}

// Delete removes the application and every edge that references it.
// Only the author may delete.
func (s *Store) Delete(ctx context.Context, id, requesterID primitive.ObjectID) error {
	if _, err := s.requireAuthor(ctx, id, requesterID); err != nil {
		return err
	}

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		for _, coll := range []string{"submissions", "decisions", "visibility_grants"} {
			if _, err := s.db.Collection(coll).DeleteMany(ctx, bson.M{"application_id": id}); err != nil {
				return apperr.Storage("deleting application edges", err)
			}
		}
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return apperr.Storage("deleting application", err)
		}
		return nil
	})
}

// UpdatePrivacy flips the private flag. Author only.
func (s *Store) UpdatePrivacy(ctx context.Context, id, requesterID primitive.ObjectID, private bool) error {
	if _, err := s.requireAuthor(ctx, id, requesterID); err != nil {
		return err
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"private":    private,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return apperr.Storage("updating privacy", err)
	}
	return nil
}

// ReplaceVisibility swaps the whole whitelist in one transaction.
// Unresolved group ids are skipped silently. Author only.
func (s *Store) ReplaceVisibility(ctx context.Context, id, requesterID primitive.ObjectID, groupIDs []primitive.ObjectID) error {
	if _, err := s.requireAuthor(ctx, id, requesterID); err != nil {
		return err
	}

	keep, err := groupstore.New(s.db).FilterExisting(ctx, groupIDs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		grants := s.db.Collection("visibility_grants")
		if _, err := grants.DeleteMany(ctx, bson.M{"application_id": id}); err != nil {
			return apperr.Storage("clearing visibility grants", err)
		}
		for _, g := range keep {
			grant := models.VisibilityGrant{
				ID:            primitive.NewObjectID(),
				ApplicationID: id,
				GroupID:       g,
				CreatedAt:     now,
			}
			if _, err := grants.InsertOne(ctx, grant); err != nil {
				return apperr.Storage("inserting visibility grant", err)
			}
		}
		return nil
	})
}

// AddVisibility whitelists one group. Granting an already whitelisted
// group is a no-op. Author only.
func (s *Store) AddVisibility(ctx context.Context, id, requesterID, groupID primitive.ObjectID) error {
	if _, err := s.requireAuthor(ctx, id, requesterID); err != nil {
		return err
	}
	if _, err := groupstore.New(s.db).GetByID(ctx, groupID); err != nil {
		return err
	}

	grant := models.VisibilityGrant{
		ID:            primitive.NewObjectID(),
		ApplicationID: id,
		GroupID:       groupID,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.db.Collection("visibility_grants").InsertOne(ctx, grant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return apperr.Storage("inserting visibility grant", err)
	}
	return nil
}

// RemoveVisibility revokes one group's grant. Author only.
func (s *Store) RemoveVisibility(ctx context.Context, id, requesterID, groupID primitive.ObjectID) error {
	if _, err := s.requireAuthor(ctx, id, requesterID); err != nil {
		return err
	}
	res, err := s.db.Collection("visibility_grants").DeleteOne(ctx, bson.M{
		"application_id": id,
		"group_id":       groupID,
	})
	if err != nil {
		return apperr.Storage("deleting visibility grant", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("group %s is not whitelisted on this application", groupID.Hex())
	}
	return nil
}

// Grants returns the whitelist group ids for one application.
func (s *Store) Grants(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.db.Collection("visibility_grants").Find(ctx, bson.M{"application_id": id})
	if err != nil {
		return nil, apperr.Storage("loading visibility grants", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var g models.VisibilityGrant
		if err := cur.Decode(&g); err != nil {
			return nil, apperr.Storage("decoding visibility grant", err)
		}
		ids = append(ids, g.GroupID)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Storage("loading visibility grants", err)
	}
	return ids, nil
}

// Submissions returns the approval chain sorted by flow position.
func (s *Store) Submissions(ctx context.Context, id primitive.ObjectID) ([]models.Submission, error) {
	cur, err := s.db.Collection("submissions").Find(ctx, bson.M{"application_id": id},
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

// Count returns the total number of applications.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Storage("counting applications", err)
	}
	return n, nil
}

// Types returns the distinct application types in use.
func (s *Store) Types(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "type", bson.M{})
	if err != nil {
		return nil, apperr.Storage("listing application types", err)
	}
	types := make([]string, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(string); ok {
			types = append(types, t)
		}
	}
	return types, nil
}
