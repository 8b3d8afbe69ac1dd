// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.

The unique indexes here carry engine invariants, not just performance:

  - submissions (application_id, flow_index) unique: one recipient per
    chain position.
  - decisions (application_id, recipient_id) unique: at most one
    decision per recipient per application, which both serializes
    duplicate decision submissions racing at the same flow position and
    makes approval/rejection mutually exclusive.
  - visibility_grants (application_id, group_id) unique: grant
    whitelists are sets.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensureApplications(ctx, db); err != nil {
		problems = append(problems, "applications: "+err.Error())
	}
	if err := ensureSubmissions(ctx, db); err != nil {
		problems = append(problems, "submissions: "+err.Error())
	}
	if err := ensureDecisions(ctx, db); err != nil {
		problems = append(problems, "decisions: "+err.Error())
	}
	if err := ensureVisibilityGrants(ctx, db); err != nil {
		problems = append(problems, "visibility_grants: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	// Load existing indexes once per collection.
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[desiredSig]; ok && sameBoolPtr(desiredUnique, ex.Unique) {
			zap.L().Info("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", desiredSig))
			continue
		} else if ok {
			// Options mismatch (e.g. upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): create failed: %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("created index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func uniq(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true),
	}
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	}
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		uniq("uniq_email", bson.D{{Key: "email", Value: 1}}),
		idx("by_full_name_ci", bson.D{{Key: "full_name_ci", Value: 1}}),
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		uniq("uniq_name_ci", bson.D{{Key: "name_ci", Value: 1}}),
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_memberships"), []mongo.IndexModel{
		uniq("uniq_group_user", bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}}),
		idx("by_user", bson.D{{Key: "user_id", Value: 1}}),
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("applications"), []mongo.IndexModel{
		idx("by_applicant_created", bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}}),
		idx("by_created_desc", bson.D{{Key: "created_at", Value: -1}}),
		idx("by_type_ci", bson.D{{Key: "type_ci", Value: 1}}),
	})
}

func ensureSubmissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("submissions"), []mongo.IndexModel{
		uniq("uniq_application_flow", bson.D{{Key: "application_id", Value: 1}, {Key: "flow_index", Value: 1}}),
		idx("by_recipient", bson.D{{Key: "recipient_id", Value: 1}}),
	})
}

func ensureDecisions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("decisions"), []mongo.IndexModel{
		uniq("uniq_application_recipient", bson.D{{Key: "application_id", Value: 1}, {Key: "recipient_id", Value: 1}}),
		idx("by_recipient_kind", bson.D{{Key: "recipient_id", Value: 1}, {Key: "kind", Value: 1}}),
	})
}

func ensureVisibilityGrants(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("visibility_grants"), []mongo.IndexModel{
		uniq("uniq_application_group", bson.D{{Key: "application_id", Value: 1}, {Key: "group_id", Value: 1}}),
		idx("by_group", bson.D{{Key: "group_id", Value: 1}}),
	})
}
