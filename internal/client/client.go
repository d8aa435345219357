// Package client is the HTTP API client used by the synchronizing frontend.
// Sessions ride on the server's HttpOnly cookie, kept in an in-memory jar.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"taskboard/internal/domain"
)

// Client talks to the task API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// UserSummary is the user shape auth endpoints return.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TaskDraft is a full task payload for create and full edits. An empty
// Priority is sent as medium so the draft never trips the enum check.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Deadline    string `json:"deadline"`
}

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}
	return e.Message
}

// Is lets callers match 401 responses with errors.Is(err,
// domain.ErrUnauthenticated) without inspecting the status themselves.
func (e *APIError) Is(target error) bool {
	return target == domain.ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (UserSummary, error) {
	var resp struct {
		User UserSummary `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/register", map[string]string{"email": email, "password": password}, &resp)
	return resp.User, err
}

func (c *Client) Login(ctx context.Context, email, password string) (UserSummary, error) {
	var resp struct {
		User UserSummary `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &resp)
	return resp.User, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (UserSummary, error) {
	var resp UserSummary
	err := c.do(ctx, http.MethodGet, "/me", nil, &resp)
	return resp, err
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (domain.Task, error) {
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}
	var task domain.Task
	err := c.do(ctx, http.MethodPost, "/tasks", draft, &task)
	return task, err
}

// UpdateTask sends a partial update. Only the keys present in fields reach
// the server, which is what keeps omitted-vs-cleared meaningful.
func (c *Client) UpdateTask(ctx context.Context, id int64, fields map[string]any) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), fields, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		var payload struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
