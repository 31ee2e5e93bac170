package api

import (
	"time"

	"task-manager/internal/model"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

func newUserResponse(u *model.User, token string) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Token: token}
}

// createTaskRequest has no owner field: the owner always comes from the token.
type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
}

type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *model.Status   `json:"status"`
	Priority    *model.Priority `json:"priority"`
}

func (r updateTaskRequest) toUpdate() model.TaskUpdate {
	return model.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	Environment string     `json:"environment"`
	Database    string     `json:"database"`
	CheckedAt   *time.Time `json:"checkedAt,omitempty"`
}
