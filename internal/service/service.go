// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Service defines the interface for task backend operations.
// All remote API calls go through this interface.
// Commands never build HTTP requests directly.
type Service interface {
	// Login exchanges credentials for an access token.
	// Returns ErrInvalidCredentials if the server rejects them.
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates a new account.
	Register(ctx context.Context, reg Registration) (User, error)

	// Me returns the current user.
	Me(ctx context.Context) (User, error)

	// UpdateMe applies a profile update to the current user.
	UpdateMe(ctx context.Context, update ProfileUpdate) error

	// ListTasks returns the full task collection in API order.
	// The API does not filter; callers filter client-side.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a new task.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, id TaskID, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id TaskID) error

	// Stats returns task counts by quadrant and status.
	Stats(ctx context.Context) (Stats, error)
}

var (
	// ErrInvalidCredentials is returned by Login when the server rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")
)

// HTTPError is a non-success response from the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), body)
}

// Is lets errors.Is match status-based sentinels.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail returns the string "detail" field of a JSON error body, if any.
// Validation errors carry a list there; those yield "".
func (e *HTTPError) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
