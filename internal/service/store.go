package service

import (
	"context"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// UserStore persists accounts. Implementations return repository.ErrDuplicate
// for a taken email and repository.ErrNotFound for missing users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// TaskStore persists tasks. All lookups are scoped to the owning user and
// report repository.ErrNotFound when nothing matches.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, userID, taskID string) (*model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter, page repository.Page) ([]model.Task, error)
	Update(ctx context.Context, userID, taskID string, upd model.TaskUpdate, now time.Time) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ UserStore = (*repository.UserRepository)(nil)
	_ UserStore = (*repository.MongoUserRepository)(nil)
	_ TaskStore = (*repository.TaskRepository)(nil)
	_ TaskStore = (*repository.MongoTaskRepository)(nil)
	_ Pinger    = (*repository.SQLPinger)(nil)
	_ Pinger    = (*repository.Mongo)(nil)
)
