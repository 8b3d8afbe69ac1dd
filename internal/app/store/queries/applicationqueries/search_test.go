// internal/app/store/queries/applicationqueries/search_test.go
package applicationqueries

import (
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/system/apperr"
)

func TestBuildBaseClauses(t *testing.T) {
	id := primitive.NewObjectID()
	hanko := primitive.NewObjectID()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		filter      SearchFilter
		wantClauses int
		wantKind    apperr.Kind
	}{
		{
			name:        "empty filter builds no clauses",
			filter:      SearchFilter{},
			wantClauses: 0,
		},
		{
			name:        "id and type",
			filter:      SearchFilter{ApplicationID: &id, Type: "Expense"},
			wantClauses: 2,
		},
		{
			name:        "date window is one clause",
			filter:      SearchFilter{StartDate: &start, EndDate: &end},
			wantClauses: 1,
		},
		{
			name:        "open-ended start date",
			filter:      SearchFilter{StartDate: &start},
			wantClauses: 1,
		},
		{
			name:     "unknown relationship type fails",
			filter:   SearchFilter{RelationshipType: "friends-with"},
			wantKind: apperr.KindValidation,
		},
		{
			name:        "relationship type alone is accepted",
			filter:      SearchFilter{RelationshipType: RelationshipApproved},
			wantClauses: 0,
		},
		{
			name:        "hanko id alone is accepted",
			filter:      SearchFilter{HankoID: &hanko},
			wantClauses: 0,
		},
		{
			name:     "unknown approval state fails",
			filter:   SearchFilter{ApprovalState: "halfway"},
			wantKind: apperr.KindValidation,
		},
		{
			name:        "approved approval state is accepted",
			filter:      SearchFilter{ApprovalState: "approved"},
			wantClauses: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, err := buildBaseClauses(tt.filter)
			if tt.wantKind != 0 {
				if err == nil {
					t.Fatalf("buildBaseClauses() error = nil, want kind %v", tt.wantKind)
				}
				if got := apperr.KindOf(err); got != tt.wantKind {
					t.Errorf("error kind = %v, want %v", got, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildBaseClauses() error = %v", err)
			}
			if len(clauses) != tt.wantClauses {
				t.Errorf("clause count = %d, want %d", len(clauses), tt.wantClauses)
			}
		})
	}
}

func TestTypeClauseIsSubstringMatch(t *testing.T) {
	clauses, err := buildBaseClauses(SearchFilter{Type: "Expense (Q3)"})
	if err != nil {
		t.Fatalf("buildBaseClauses() error = %v", err)
	}
	if len(clauses) != 1 {
		t.Fatalf("clause count = %d, want 1", len(clauses))
	}

	inner, ok := clauses[0]["type_ci"].(bson.M)
	if !ok {
		t.Fatalf("type clause = %v, want a $regex document", clauses[0])
	}
	pattern, ok := inner["$regex"].(string)
	if !ok {
		t.Fatalf("type clause = %v, want a $regex string", inner)
	}

	// Folded, quoted and unanchored: a partial type matches and regex
	// metacharacters in the input stay literal.
	if matched, err := regexp.MatchString(pattern, "travel expense (q3) report"); err != nil || !matched {
		t.Errorf("pattern %q did not match a containing type (err=%v)", pattern, err)
	}
	if matched, _ := regexp.MatchString(pattern, "expense q3"); matched {
		t.Errorf("pattern %q treated parentheses as regex syntax", pattern)
	}
}

func TestAndify(t *testing.T) {
	if got := andify(nil); len(got) != 0 {
		t.Errorf("andify(nil) = %v, want empty filter", got)
	}

	one, err := buildBaseClauses(SearchFilter{Type: "leave"})
	if err != nil {
		t.Fatal(err)
	}
	if got := andify(one); got["type_ci"] == nil {
		t.Errorf("andify(one clause) = %v, want the clause itself", got)
	}

	id := primitive.NewObjectID()
	two, err := buildBaseClauses(SearchFilter{Type: "leave", ApplicationID: &id})
	if err != nil {
		t.Fatal(err)
	}
	if got := andify(two); got["$and"] == nil {
		t.Errorf("andify(two clauses) = %v, want $and", got)
	}
}

func TestCut(t *testing.T) {
	rows := make([]ListRow, 5)

	tests := []struct {
		name    string
		page    Page
		wantLen int
	}{
		{"no window returns everything", Page{}, 5},
		{"batch size limits", Page{BatchSize: 2}, 2},
		{"start index skips", Page{StartIndex: 3}, 2},
		{"window in the middle", Page{StartIndex: 1, BatchSize: 2}, 2},
		{"start beyond end is empty", Page{StartIndex: 10}, 0},
		{"negative start is clamped", Page{StartIndex: -1, BatchSize: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cut(rows, tt.page); len(got) != tt.wantLen {
				t.Errorf("cut() returned %d rows, want %d", len(got), tt.wantLen)
			}
		})
	}
}
