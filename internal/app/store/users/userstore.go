// internal/app/store/users/userstore.go
package userstore

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
	"golang.org/x/crypto/bcrypt"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/normalize"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a user with a bcrypt hash of password. The email is
// normalized before the uniqueness check so casing variants collide.
func (s *Store) Create(ctx context.Context, fullName, email, password string) (models.User, error) {
	fullName = normalize.Name(fullName)
	email = normalize.Email(email)
	if fullName == "" {
		return models.User{}, apperr.Validation("full name is required")
	}
	if email == "" {
		return models.User{}, apperr.Validation("email is required")
	}
	if password == "" {
		return models.User{}, apperr.Validation("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Storage("hashing password", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, apperr.Precondition("a user with email %s already exists", email)
		}
		return models.User{}, apperr.Storage("inserting user", err)
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperr.NotFound("user %s not found", id.Hex())
		}
		return models.User{}, apperr.Storage("loading user", err)
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, apperr.NotFound("no user with that email")
		}
		return models.User{}, apperr.Storage("loading user", err)
	}
	return u, nil
}

// VerifyPassword compares password against the stored hash and returns
// the user on success.
func (s *Store) VerifyPassword(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperr.NotFound("invalid email or password")
	}
	return u, nil
}

// List returns all users ordered by folded full name.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, apperr.Storage("listing users", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, apperr.Storage("decoding users", err)
	}
	return users, nil
}

// Exists reports whether every id in ids names an existing user.
func (s *Store) Exists(ctx context.Context, ids ...primitive.ObjectID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	distinct := make([]primitive.ObjectID, 0, len(unique))
	for id := range unique {
		distinct = append(distinct, id)
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": distinct}})
	if err != nil {
		return false, apperr.Storage("counting users", err)
	}
	return n == int64(len(distinct)), nil
}
