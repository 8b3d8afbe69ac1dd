// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Create(ctx context.Context, name string) (models.Group, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Group{}, apperr.Validation("group name is required")
	}

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, apperr.Precondition("a group named %q already exists", name)
		}
		return models.Group{}, apperr.Storage("inserting group", err)
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, apperr.NotFound("group %s not found", id.Hex())
		}
		return models.Group{}, apperr.Storage("loading group", err)
	}
	return g, nil
}

func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, apperr.Storage("listing groups", err)
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, apperr.Storage("decoding groups", err)
	}
	return groups, nil
}

// Delete removes a group and its memberships. Visibility grants that
// reference the group stay behind; they simply stop matching anyone.
func (s *Store) Delete(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Storage("deleting group", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("group %s not found", id.Hex())
	}
	if _, err := db.Collection("group_memberships").DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
		return apperr.Storage("deleting group memberships", err)
	}
	return nil
}

// FilterExisting returns the subset of ids that name existing groups,
// preserving input order and dropping duplicates. Callers use it to
// skip unresolved group ids silently when building a whitelist.
func (s *Store) FilterExisting(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperr.Storage("filtering groups", err)
	}
	defer cur.Close(ctx)

	found := map[primitive.ObjectID]struct{}{}
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Storage("decoding group id", err)
		}
		found[doc.ID] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Storage("filtering groups", err)
	}

	var out []primitive.ObjectID
	seen := map[primitive.ObjectID]struct{}{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
