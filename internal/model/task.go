package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority orders tasks by importance.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single item in a user's list. UserID is set once on creation.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string    `gorm:"index;not null;size:36" bson:"user_id" json:"user"`
	Title       string    `gorm:"not null" bson:"title" json:"title"`
	TitleLower  string    `gorm:"index" bson:"title_lower" json:"-"`
	Description string    `bson:"description" json:"description"`
	Status      Status    `gorm:"size:16;default:pending" bson:"status" json:"status"`
	Priority    Priority  `gorm:"size:16;default:medium" bson:"priority" json:"priority"`
	CreatedAt   time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// BeforeCreate assigns the store id for SQL backends.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TaskFilter narrows a listing. Zero values mean "no constraint".
type TaskFilter struct {
	Status   Status
	Priority Priority
	Title    string
}

// TaskUpdate carries a partial update; nil fields keep their stored value.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil
}
