// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

// Add places a user in a group. Adding an existing member is a no-op.
func (s *Store) Add(ctx context.Context, groupID, userID primitive.ObjectID) error {
	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return apperr.Storage("adding group member", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return apperr.Storage("removing group member", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user %s is not a member of group %s", userID.Hex(), groupID.Hex())
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, apperr.Storage("checking group membership", err)
	}
	return n > 0, nil
}

// GroupsOfUser returns the ids of every group the user belongs to.
func (s *Store) GroupsOfUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.collectIDs(ctx, bson.M{"user_id": userID}, "group_id")
}

// MembersOfGroup returns the ids of every user in the group.
func (s *Store) MembersOfGroup(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.collectIDs(ctx, bson.M{"group_id": groupID}, "user_id")
}

func (s *Store) collectIDs(ctx context.Context, filter bson.M, field string) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Storage("loading group memberships", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.GroupMembership
		if err := cur.Decode(&m); err != nil {
			return nil, apperr.Storage("decoding group membership", err)
		}
		switch field {
		case "group_id":
			ids = append(ids, m.GroupID)
		case "user_id":
			ids = append(ids, m.UserID)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Storage("loading group memberships", err)
	}
	return ids, nil
}
