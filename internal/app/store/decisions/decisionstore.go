// internal/app/store/decisions/decisionstore.go
package decisionstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/txn"
	"github.com/ringihub/ringihub/internal/app/workflow"
	"github.com/ringihub/ringihub/internal/domain/models"
)

type Store struct {
	db  *mongo.Database
	log *zap.Logger
	c   *mongo.Collection
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{db: db, log: log, c: db.Collection("decisions")}
}

// Record writes one decision for recipientID on applicationID after
// verifying it is that recipient's turn. The read-check-write runs
// inside a transaction, and the unique index on
// (application_id, recipient_id) serializes two racing decisions at
// the same flow position: the loser's insert collides and the whole
// attempt rolls back.
func (s *Store) Record(ctx context.Context, applicationID, recipientID primitive.ObjectID,
	kind, comment, attachmentHankos string) (models.Decision, error) {

	if kind != models.DecisionApproved && kind != models.DecisionRejected {
		return models.Decision{}, apperr.Validation("decision kind must be %q or %q",
			models.DecisionApproved, models.DecisionRejected)
	}

	d := models.Decision{
		ID:               primitive.NewObjectID(),
		ApplicationID:    applicationID,
		RecipientID:      recipientID,
		Kind:             kind,
		Comment:          comment,
		AttachmentHankos: attachmentHankos,
		CreatedAt:        time.Now().UTC(),
	}

	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		subs, err := s.loadSubmissions(ctx, applicationID)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return apperr.NotFound("application %s not found", applicationID.Hex())
		}
		existing, err := s.ListByApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if err := workflow.CanDecide(subs, existing, recipientID); err != nil {
			return err
		}

		if _, err := s.c.InsertOne(ctx, d); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperr.Precondition("a decision by this recipient already exists")
			}
			return apperr.Storage("inserting decision", err)
		}
		return nil
	})
	if err != nil {
		return models.Decision{}, err
	}
	return d, nil
}

// ListByApplication returns every decision recorded on one application.
func (s *Store) ListByApplication(ctx context.Context, applicationID primitive.ObjectID) ([]models.Decision, error) {
	cur, err := s.c.Find(ctx, bson.M{"application_id": applicationID})
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

func (s *Store) loadSubmissions(ctx context.Context, applicationID primitive.ObjectID) ([]models.Submission, error) {
	cur, err := s.db.Collection("submissions").Find(ctx, bson.M{"application_id": applicationID},
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
