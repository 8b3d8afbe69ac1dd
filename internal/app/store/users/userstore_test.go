// internal/app/store/users/userstore_test.go
package userstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ringihub/ringihub/internal/app/store/users"
	"github.com/ringihub/ringihub/internal/app/system/apperr"
	"github.com/ringihub/ringihub/internal/testutil"
)

func TestCreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	u, err := store.Create(ctx, "Hanako Tanaka", "  Hanako@Example.COM ", "s3cret")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.Email != "hanako@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret" {
		t.Error("password must be stored hashed")
	}

	got, err := store.GetByEmail(ctx, "HANAKO@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, u.ID)
	}

	byID, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.FullName != "Hanako Tanaka" {
		t.Errorf("FullName = %q", byID.FullName)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	tests := []struct {
		name                      string
		fullName, email, password string
	}{
		{"missing name", "", "a@b.com", "pw"},
		{"missing email", "A B", "", "pw"},
		{"missing password", "A B", "a@b.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.fullName, tt.email, tt.password)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)

	u, err := store.Create(ctx, "Taro Suzuki", "taro@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.VerifyPassword(ctx, "taro@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("VerifyPassword() ID = %v, want %v", got.ID, u.ID)
	}

	if _, err := store.VerifyPassword(ctx, "taro@example.com", "wrong"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("VerifyPassword() with bad password error = %v, want not found", err)
	}
}

func TestExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)

	a := fx.CreateUser(ctx, "A", "a@example.com")
	b := fx.CreateUser(ctx, "B", "b@example.com")

	ok, err := store.Exists(ctx, a.ID, b.ID, a.ID)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists() = false for existing users")
	}

	ok, err = store.Exists(ctx, a.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists() = true when one id is unknown")
	}
}
