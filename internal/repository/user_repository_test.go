package repository_test

import (
	"context"
	"errors"
	"testing"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/testutil"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	user := model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, &user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected id to be assigned")
	}

	got, err := repo.FindByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if got.ID != user.ID || got.Name != "Ann" || got.PasswordHash != "hash" {
		t.Errorf("unexpected user %+v", got)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	first := model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := model.User{Name: "Other Ann", Email: "ann@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, &second); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Email equality is exact, so a case variant is a different account.
	upper := model.User{Name: "ANN", Email: "ANN@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, &upper); err != nil {
		t.Errorf("expected case variant to be accepted, got %v", err)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := repository.NewUserRepository(testutil.NewDB(t))
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
