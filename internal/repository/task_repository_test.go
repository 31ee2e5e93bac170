package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/testutil"
)

func seedTasks(t *testing.T, repo *repository.TaskRepository, userID string, tasks ...model.Task) []model.Task {
	t.Helper()
	ctx := context.Background()
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		task.UserID = userID
		if err := repo.Create(ctx, &task); err != nil {
			t.Fatalf("create task: %v", err)
		}
		out = append(out, task)
	}
	return out
}

func TestTaskRepositoryCreateAssignsID(t *testing.T) {
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	created := seedTasks(t, repo, "owner-a",
		model.Task{Title: "one", Status: model.StatusPending, Priority: model.PriorityLow},
		model.Task{Title: "two", Status: model.StatusPending, Priority: model.PriorityLow},
	)

	if created[0].ID == "" || created[1].ID == "" {
		t.Fatal("expected ids to be assigned")
	}
	if created[0].ID == created[1].ID {
		t.Error("expected distinct ids")
	}
	if created[0].CreatedAt.IsZero() || created[0].UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestTaskRepositoryOwnerScope(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	mine := seedTasks(t, repo, "owner-a", model.Task{Title: "mine", Status: model.StatusPending, Priority: model.PriorityLow})
	seedTasks(t, repo, "owner-b", model.Task{Title: "theirs", Status: model.StatusPending, Priority: model.PriorityLow})

	tasks, err := repo.List(ctx, "owner-a", model.TaskFilter{}, repository.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "mine" {
		t.Fatalf("expected only own task, got %+v", tasks)
	}

	if _, err := repo.FindByID(ctx, "owner-b", mine[0].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign find, got %v", err)
	}
	title := "hijacked"
	if _, err := repo.Update(ctx, "owner-b", mine[0].ID, model.TaskUpdate{Title: &title}, time.Now()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign update, got %v", err)
	}
	if err := repo.Delete(ctx, "owner-b", mine[0].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
	}

	got, err := repo.FindByID(ctx, "owner-a", mine[0].ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Title != "mine" {
		t.Errorf("task was modified by another owner: %+v", got)
	}
}

func TestTaskRepositoryFilter(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	seedTasks(t, repo, "owner-a",
		model.Task{Title: "Write report", Status: model.StatusPending, Priority: model.PriorityHigh},
		model.Task{Title: "Review REPORT", Status: model.StatusCompleted, Priority: model.PriorityHigh},
		model.Task{Title: "Buy milk", Status: model.StatusPending, Priority: model.PriorityLow},
		model.Task{Title: "100% done_ish", Status: model.StatusInProgress, Priority: model.PriorityMedium},
		model.Task{Title: "ÉCOLE Réunion", Status: model.StatusPending, Priority: model.PriorityLow},
	)

	tests := []struct {
		name   string
		filter model.TaskFilter
		want   []string
	}{
		{"none", model.TaskFilter{}, []string{"Write report", "Review REPORT", "Buy milk", "100% done_ish", "ÉCOLE Réunion"}},
		{"status", model.TaskFilter{Status: model.StatusPending}, []string{"Write report", "Buy milk", "ÉCOLE Réunion"}},
		{"priority", model.TaskFilter{Priority: model.PriorityHigh}, []string{"Write report", "Review REPORT"}},
		{"status and priority", model.TaskFilter{Status: model.StatusPending, Priority: model.PriorityHigh}, []string{"Write report"}},
		{"title case insensitive", model.TaskFilter{Title: "report"}, []string{"Write report", "Review REPORT"}},
		{"title and status", model.TaskFilter{Title: "Report", Status: model.StatusCompleted}, []string{"Review REPORT"}},
		{"title percent literal", model.TaskFilter{Title: "0%"}, []string{"100% done_ish"}},
		{"title underscore literal", model.TaskFilter{Title: "e_i"}, []string{"100% done_ish"}},
		{"title non-ascii lower", model.TaskFilter{Title: "école"}, []string{"ÉCOLE Réunion"}},
		{"title non-ascii upper", model.TaskFilter{Title: "RÉUNION"}, []string{"ÉCOLE Réunion"}},
		{"no match", model.TaskFilter{Title: "zzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.List(ctx, "owner-a", tt.filter, repository.Page{})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(tasks) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %d: %+v", len(tt.want), len(tasks), tasks)
			}
			for i, title := range tt.want {
				if tasks[i].Title != title {
					t.Errorf("task %d: expected %q, got %q", i, title, tasks[i].Title)
				}
			}
		})
	}
}

func TestTaskRepositoryRetitleRefreshesTitleMatch(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	created := seedTasks(t, repo, "owner-a", model.Task{Title: "Été", Status: model.StatusPending, Priority: model.PriorityLow})[0]

	title := "Ärger"
	if _, err := repo.Update(ctx, "owner-a", created.ID, model.TaskUpdate{Title: &title}, time.Now()); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks, err := repo.List(ctx, "owner-a", model.TaskFilter{Title: "ärg"}, repository.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Ärger" {
		t.Errorf("expected retitled task to match, got %+v", tasks)
	}
	tasks, err = repo.List(ctx, "owner-a", model.TaskFilter{Title: "été"}, repository.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected old title to stop matching, got %+v", tasks)
	}
}

func TestTaskRepositoryPage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	seedTasks(t, repo, "owner-a",
		model.Task{Title: "a", Status: model.StatusPending, Priority: model.PriorityLow},
		model.Task{Title: "b", Status: model.StatusPending, Priority: model.PriorityLow},
		model.Task{Title: "c", Status: model.StatusPending, Priority: model.PriorityLow},
	)

	tasks, err := repo.List(ctx, "owner-a", model.TaskFilter{}, repository.Page{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "b" {
		t.Errorf("expected second task, got %+v", tasks)
	}
}

func TestTaskRepositoryPartialUpdate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	created := seedTasks(t, repo, "owner-a", model.Task{
		Title: "T", Description: "desc", Status: model.StatusPending, Priority: model.PriorityHigh,
	})[0]

	completed := model.StatusCompleted
	later := created.UpdatedAt.Add(time.Minute)
	updated, err := repo.Update(ctx, "owner-a", created.ID, model.TaskUpdate{Status: &completed}, later)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %q", updated.Status)
	}
	if updated.Title != "T" || updated.Description != "desc" || updated.Priority != model.PriorityHigh {
		t.Errorf("unspecified fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected updated_at to move forward")
	}

	empty := ""
	updated, err = repo.Update(ctx, "owner-a", created.ID, model.TaskUpdate{Description: &empty}, later)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("expected description cleared, got %q", updated.Description)
	}
}

func TestTaskRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTaskRepository(testutil.NewDB(t))
	created := seedTasks(t, repo, "owner-a", model.Task{Title: "gone", Status: model.StatusPending, Priority: model.PriorityLow})[0]

	if err := repo.Delete(ctx, "owner-a", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "owner-a", created.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "owner-a", created.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
