package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// Page selects a window of an ordered listing. Limit 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// TaskRepository handles CRUD for tasks. Every query is scoped to an owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	task.TitleLower = foldTitle(task.Title)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// List returns the owner's tasks matching filter, oldest first.
func (r *TaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter, page Page) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Title != "" {
		q = q.Where(`title_lower LIKE ? ESCAPE '\'`, "%"+escapeLike(foldTitle(filter.Title))+"%")
	}
	if page.Limit > 0 {
		q = q.Offset(page.Offset).Limit(page.Limit)
	}

	tasks := []model.Task{}
	if err := q.Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of upd and returns the stored result.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID string, upd model.TaskUpdate, now time.Time) (*model.Task, error) {
	fields := map[string]interface{}{"updated_at": now}
	if upd.Title != nil {
		fields["title"] = *upd.Title
		fields["title_lower"] = foldTitle(*upd.Title)
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.Priority != nil {
		fields["priority"] = *upd.Priority
	}

	db := r.db.WithContext(ctx)
	res := db.Model(&model.Task{}).Where("user_id = ? AND id = ?", userID, taskID).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, userID, taskID)
}

// Delete removes a task owned by userID. Nothing removed yields ErrNotFound.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// foldTitle lowers a title for matching. SQLite's LOWER only folds ASCII,
// so the folded copy is computed here and stored next to the title.
func foldTitle(title string) string {
	return strings.ToLower(title)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
