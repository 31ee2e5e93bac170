package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"task-manager/internal/api"
	"task-manager/internal/auth"
	"task-manager/internal/client"
	"task-manager/internal/config"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/service"
	"task-manager/internal/testutil"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.NewDB(t)
	tokens, err := auth.NewTokenManager([]byte("client-test-secret"))
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	srv := api.New(config.Config{Env: config.EnvDevelopment}, api.Deps{
		Auth:   service.NewAuthService(repository.NewUserRepository(db), auth.NewHasher(bcrypt.MinCost), tokens),
		Tasks:  service.NewTaskService(repository.NewTaskRepository(db), nil),
		Tokens: tokens,
		Health: service.NewHealthMonitor(repository.NewSQLPinger(db), time.Second),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientFlow(t *testing.T) {
	ts := newAPI(t)
	ctx := context.Background()
	c := client.New(ts.URL+"/", nil)

	health, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("unexpected health %+v", health)
	}

	if _, err := c.Register(ctx, "Ann", "ann@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := c.ListTasks(ctx, 0, 0); !isStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 before login, got %v", err)
	}
	user, err := c.Login(ctx, "ann@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.Token() == "" || c.Token() != user.Token {
		t.Fatal("expected client to keep the token")
	}

	created, err := c.CreateTask(ctx, client.NewTask{Title: "T", Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CreateTask(ctx, client.NewTask{Title: "Gym", Priority: model.PriorityLow}); err != nil {
		t.Fatalf("create: %v", err)
	}

	done := model.StatusCompleted
	if _, err := c.UpdateTask(ctx, created.ID, client.TaskPatch{Status: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := c.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != done || got.Title != "T" || got.Priority != model.PriorityHigh {
		t.Errorf("unexpected task %+v", got)
	}

	filtered, err := c.FilterTasks(ctx, model.TaskFilter{Status: done, Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != created.ID {
		t.Errorf("unexpected filter result %+v", filtered)
	}

	page, err := c.ListTasks(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].Title != "Gym" {
		t.Errorf("unexpected page %+v", page)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteTask(ctx, created.ID); !isStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 on second delete, got %v", err)
	}
}

func TestClientDecodesErrorMessage(t *testing.T) {
	ts := newAPI(t)
	c := client.New(ts.URL, nil)

	_, err := c.Login(context.Background(), "nobody@example.com", "pw")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func isStatus(err error, code int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
