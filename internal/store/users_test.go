package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "guard", "hash123", model.RoleSecurity)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != model.RoleSecurity {
		t.Errorf("expected role 'security', got %q", user.Role)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "guard" {
		t.Errorf("expected username 'guard', got %q", got.Username)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleResident); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := CreateUser(ctx, database, "alice", "hash", model.RoleResident)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateUserUnknownRole(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateUser(context.Background(), database, "bob", "hash", "manager")
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestDeletedUsernameReusable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "carol", "hash", model.RoleResident)
	if err := DeleteUser(ctx, database, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if got, _ := GetUserByUsername(ctx, database, "carol"); got != nil {
		t.Error("deleted user should not be found by username")
	}
	if _, err := CreateUser(ctx, database, "carol", "hash", model.RoleResident); err != nil {
		t.Errorf("expected username reuse after delete, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 active user, got %d", len(users))
	}
}

func TestUpdateUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "dave", "hash", model.RoleResident)
	if err := UpdateUserRole(ctx, database, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	got, _ := GetUser(ctx, database, u.ID)
	if got.Role != model.RoleAdmin {
		t.Errorf("expected admin, got %q", got.Role)
	}

	if err := UpdateUserRole(ctx, database, 999, model.RoleAdmin); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}
}
