// internal/app/policy/visibilitypolicy/visibilitypolicy.go
//
// Package visibilitypolicy decides whether a viewer may see the content
// of an application, and redacts applications they may not.
//
// Public applications are visible to every signed-in user. Private
// applications are visible to the applicant, to every recipient on the
// approval chain, and to members of whitelisted groups. Everyone else
// still learns the application exists but sees only a redacted shell.
package visibilitypolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/app/system/timeouts"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// ConfidentialTitle replaces the title on redacted applications.
const ConfidentialTitle = "機密 / Confidential"

// IsForbidden applies the visibility rule to data the caller has
// already loaded. recipientIDs are the application's chain recipients,
// grantGroupIDs its visibility whitelist, and viewerGroupIDs the
// groups the viewer belongs to.
func IsForbidden(app *models.Application, viewerID primitive.ObjectID,
	recipientIDs, grantGroupIDs, viewerGroupIDs []primitive.ObjectID) bool {

	if !app.Private {
		return false
	}
	if app.ApplicantID == viewerID {
		return false
	}
	for _, r := range recipientIDs {
		if r == viewerID {
			return false
		}
	}
	if len(grantGroupIDs) == 0 || len(viewerGroupIDs) == 0 {
		return true
	}
	granted := make(map[primitive.ObjectID]struct{}, len(grantGroupIDs))
	for _, g := range grantGroupIDs {
		granted[g] = struct{}{}
	}
	for _, g := range viewerGroupIDs {
		if _, ok := granted[g]; ok {
			return false
		}
	}
	return true
}

// Check loads the viewer's relationships to app and reports whether
// the viewer is forbidden from seeing its content. Public applications
// and the applicant's own applications short-circuit without touching
// the database.
func Check(ctx context.Context, db *mongo.Database, app *models.Application, viewerID primitive.ObjectID) (bool, error) {
	if !app.Private || app.ApplicantID == viewerID {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	// Recipient?
	n, err := db.Collection("submissions").CountDocuments(ctx, bson.M{
		"application_id": app.ID,
		"recipient_id":   viewerID,
	})
	if err != nil {
		return false, apperr.Storage("counting chain positions", err)
	}
	if n > 0 {
		return false, nil
	}

	// Member of a whitelisted group?
	grantGroupIDs, err := grantGroups(ctx, db, app.ID)
	if err != nil {
		return false, err
	}
	if len(grantGroupIDs) == 0 {
		return true, nil
	}
	n, err = db.Collection("group_memberships").CountDocuments(ctx, bson.M{
		"user_id":  viewerID,
		"group_id": bson.M{"$in": grantGroupIDs},
	})
	if err != nil {
		return false, apperr.Storage("checking whitelist membership", err)
	}
	return n == 0, nil
}

func grantGroups(ctx context.Context, db *mongo.Database, applicationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := db.Collection("visibility_grants").Find(ctx, bson.M{"application_id": applicationID})
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

// Redact strips the confidential fields from app in place. The title
// is replaced with a fixed placeholder and the form content removed;
// identifiers, the type tag and timestamps stay visible.
func Redact(app *models.Application) {
	app.Title = ConfidentialTitle
	app.FormData = ""
}
