// Package client is a typed HTTP client for the task manager API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"task-manager/internal/model"
)

// DefaultTimeout bounds every API call.
const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// User is the account returned by register and login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// NewTask is the payload for CreateTask. Empty fields use server defaults.
type NewTask struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
}

// Health is the body of the root health route.
type Health struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Environment string `json:"environment"`
	Database    string `json:"database"`
}

// Client calls the API, attaching the bearer token once logged in.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for baseURL. A nil httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken replaces the bearer token used for task calls.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var u User
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var u User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &u); err != nil {
		return nil, err
	}
	c.token = u.Token
	return &u, nil
}

func (c *Client) CreateTask(ctx context.Context, task NewTask) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", task, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks returns one page of tasks; page or limit of 0 requests all.
func (c *Client) ListTasks(ctx context.Context, page, limit int) ([]model.Task, error) {
	q := url.Values{}
	if page > 0 && limit > 0 {
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, withQuery("/api/tasks", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FilterTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}
	if s := strings.TrimSpace(filter.Title); s != "" {
		q.Set("title", s)
	}
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, withQuery("/api/tasks/filter", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
