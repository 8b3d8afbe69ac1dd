// internal/app/workflow/workflow.go
//
// Package workflow derives the state of an approval chain from its edge
// sets. Nothing here touches the database and no state is ever stored:
// callers load the submission and decision records for one application
// and recompute progress on every read.
package workflow

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/domain/models"
)

// State is the derived lifecycle of an application's approval chain.
type State string

const (
	StatePending   State = "pending"
	StateRejected  State = "rejected"
	StateCompleted State = "completed"
)

// Progress is the derived position of an application in its chain.
type Progress struct {
	// RecipientCount is the length of the approval chain.
	RecipientCount int

	// ApprovalCount is the number of recipients who have approved.
	ApprovalCount int

	// State is pending, rejected or completed.
	State State

	// NextRecipientID is the recipient whose decision is awaited.
	// Only meaningful when State is StatePending.
	NextRecipientID primitive.ObjectID
}

// Derive recomputes chain progress from the full submission and
// decision sets of one application.
//
// Submissions may arrive in any order; they are sorted by flow index
// here. Flow indexes must form a contiguous run 0..n-1, which the
// store guarantees at creation time, so a gap or duplicate means the
// data has been corrupted and Derive reports it as an internal error.
func Derive(subs []models.Submission, decisions []models.Decision) (Progress, error) {
	if len(subs) == 0 {
		return Progress{}, apperr.Internal("application has no recipients")
	}

	ordered := make([]models.Submission, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].FlowIndex < ordered[j].FlowIndex
	})
	for i, s := range ordered {
		if s.FlowIndex != i {
			return Progress{}, apperr.Internal("approval chain positions are not contiguous")
		}
	}

	byRecipient := make(map[primitive.ObjectID]models.Decision, len(decisions))
	for _, d := range decisions {
		byRecipient[d.RecipientID] = d
	}

	p := Progress{RecipientCount: len(ordered)}
	for _, s := range ordered {
		d, ok := byRecipient[s.RecipientID]
		if !ok {
			p.State = StatePending
			p.NextRecipientID = s.RecipientID
			return p, nil
		}
		if d.IsRejection() {
			p.State = StateRejected
			return p, nil
		}
		p.ApprovalCount++
	}

	p.State = StateCompleted
	return p, nil
}

// CanDecide reports whether recipientID may record a decision right
// now. A nil return means the recipient is the next undecided
// position in the chain.
func CanDecide(subs []models.Submission, decisions []models.Decision, recipientID primitive.ObjectID) error {
	p, err := Derive(subs, decisions)
	if err != nil {
		return err
	}

	switch p.State {
	case StateRejected:
		return apperr.Precondition("application has already been rejected")
	case StateCompleted:
		return apperr.Precondition("application has already been fully approved")
	}

	isRecipient := false
	for _, s := range subs {
		if s.RecipientID == recipientID {
			isRecipient = true
			break
		}
	}
	if !isRecipient {
		return apperr.NotFound("user %s is not a recipient of this application", recipientID.Hex())
	}

	if p.NextRecipientID != recipientID {
		return apperr.Precondition("it is not user %s's turn to decide", recipientID.Hex())
	}
	return nil
}
