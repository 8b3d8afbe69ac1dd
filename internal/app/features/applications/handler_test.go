// internal/app/features/applications/handler_test.go
package applications

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/store/queries/applicationqueries"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
)

func TestFilterFromQuery(t *testing.T) {
	id := primitive.NewObjectID()
	hanko := primitive.NewObjectID()

	r := httptest.NewRequest("GET",
		"/applications?id="+id.Hex()+
			"&type=Expense&relationship_type=submitted-to&hanko_id="+hanko.Hex()+
			"&start_date=2024-01-01&end_date=2024-12-31T23:59:59Z&approval_state=approved", nil)

	f, err := filterFromQuery(r)
	if err != nil {
		t.Fatalf("filterFromQuery() error = %v", err)
	}
	if f.ApplicationID == nil || *f.ApplicationID != id {
		t.Errorf("ApplicationID = %v, want %v", f.ApplicationID, id)
	}
	if f.Type != "Expense" {
		t.Errorf("Type = %q", f.Type)
	}
	if f.RelationshipType != applicationqueries.RelationshipSubmittedTo {
		t.Errorf("RelationshipType = %q", f.RelationshipType)
	}
	if f.HankoID == nil || *f.HankoID != hanko {
		t.Errorf("HankoID = %v, want %v", f.HankoID, hanko)
	}
	if f.StartDate == nil || f.StartDate.Year() != 2024 || f.StartDate.Month() != 1 {
		t.Errorf("StartDate = %v", f.StartDate)
	}
	if f.EndDate == nil || f.EndDate.Month() != 12 {
		t.Errorf("EndDate = %v", f.EndDate)
	}
	if f.ApprovalState != "approved" {
		t.Errorf("ApprovalState = %q", f.ApprovalState)
	}
}

func TestFilterFromQueryRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad id", "id=not-hex"},
		{"bad hanko id", "hanko_id=xyz"},
		{"bad group id", "group_id=123"},
		{"bad date", "start_date=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/applications?"+tt.query, nil)
			if _, err := filterFromQuery(r); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("filterFromQuery() error = %v, want validation", err)
			}
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/applications/submitted?start_index=10&batch_size=5", nil)
	page, err := pageFromQuery(r)
	if err != nil {
		t.Fatalf("pageFromQuery() error = %v", err)
	}
	if page.StartIndex != 10 || page.BatchSize != 5 {
		t.Errorf("page = %+v, want {10 5}", page)
	}

	r = httptest.NewRequest("GET", "/applications/submitted?start_index=-1", nil)
	if _, err := pageFromQuery(r); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("pageFromQuery() error = %v, want validation", err)
	}
}

func TestParseObjectIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	ids, err := parseObjectIDs([]string{a.Hex(), b.Hex()}, "recipient id")
	if err != nil {
		t.Fatalf("parseObjectIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Errorf("parseObjectIDs() = %v, order must be preserved", ids)
	}

	if _, err := parseObjectIDs([]string{"junk"}, "recipient id"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("parseObjectIDs(junk) error = %v, want validation", err)
	}
}
