package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"task-manager/internal/apperr"
	"task-manager/internal/cache"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

const msgTaskNotFound = "Task not found"

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
}

// TaskService wraps task-related business logic. Every operation is scoped
// to the owner id taken from the authenticated identity.
type TaskService struct {
	tasks TaskStore
	cache cache.TaskCache
	now   func() time.Time
}

func NewTaskService(tasks TaskStore, taskCache cache.TaskCache) *TaskService {
	if taskCache == nil {
		taskCache = cache.Nop{}
	}
	return &TaskService{tasks: tasks, cache: taskCache, now: time.Now}
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input TaskInput) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Not authorized")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.New(apperr.BadRequest, "Title is required")
	}

	task := model.Task{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, invalidStatus(input.Status)
		}
		task.Status = input.Status
	}
	if input.Priority != "" {
		if !input.Priority.Valid() {
			return nil, invalidPriority(input.Priority)
		}
		task.Priority = input.Priority
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, apperr.Wrap(err, "could not create task")
	}
	return &task, nil
}

// ListTasks returns the owner's tasks in creation order.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, page repository.Page) ([]model.Task, error) {
	return s.FilterTasks(ctx, ownerID, model.TaskFilter{}, page)
}

// FilterTasks returns the owner's tasks matching every set field of filter.
func (s *TaskService) FilterTasks(ctx context.Context, ownerID string, filter model.TaskFilter, page repository.Page) ([]model.Task, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Not authorized")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidStatus(filter.Status)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, invalidPriority(filter.Priority)
	}
	if page.Offset < 0 || page.Limit < 0 {
		return nil, apperr.New(apperr.BadRequest, "Invalid page")
	}

	tasks, err := s.tasks.List(ctx, ownerID, filter, page)
	if err != nil {
		return nil, apperr.Wrap(err, "could not load tasks")
	}
	return tasks, nil
}

// GetTask reads through the cache. A task owned by someone else is reported
// exactly like a missing one.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Not authorized")
	}

	cached, err := s.cache.Get(ctx, taskID)
	switch {
	case err == nil:
		if cached.UserID != ownerID {
			return nil, apperr.New(apperr.NotFound, msgTaskNotFound)
		}
		return cached, nil
	case !errors.Is(err, cache.ErrMiss):
		log.Printf("[warn] cache get task %s: %v", taskID, err)
	}

	task, err := s.tasks.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, notFoundOr(err, "could not load task")
	}
	if err := s.cache.Fill(ctx, task); err != nil {
		log.Printf("[warn] cache fill task %s: %v", taskID, err)
	}
	return task, nil
}

// UpdateTask applies a partial update; fields left nil keep their value.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Not authorized")
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, apperr.New(apperr.BadRequest, "Title cannot be empty")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, invalidStatus(*upd.Status)
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return nil, invalidPriority(*upd.Priority)
	}

	task, err := s.tasks.Update(ctx, ownerID, taskID, upd, s.now())
	if err != nil {
		return nil, notFoundOr(err, "could not update task")
	}
	s.invalidate(ctx, taskID)
	return task, nil
}

// DeleteTask removes the task. Deleting an id twice reports NotFound.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if ownerID == "" {
		return apperr.New(apperr.Unauthorized, "Not authorized")
	}
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		return notFoundOr(err, "could not delete task")
	}
	s.invalidate(ctx, taskID)
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, taskID string) {
	if err := s.cache.Invalidate(ctx, taskID); err != nil {
		log.Printf("[warn] cache invalidate task %s: %v", taskID, err)
	}
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.NotFound, msgTaskNotFound)
	}
	return apperr.Wrap(err, msg)
}

func invalidStatus(s model.Status) error {
	return apperr.New(apperr.BadRequest, fmt.Sprintf("Invalid status %q", s))
}

func invalidPriority(p model.Priority) error {
	return apperr.New(apperr.BadRequest, fmt.Sprintf("Invalid priority %q", p))
}
