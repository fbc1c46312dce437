// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quadrants lists the quadrant labels the server assigns, in display order.
var Quadrants = []string{"Q1", "Q2", "Q3", "Q4"}

// TaskID is the opaque task identifier.
// The API sends integers; the client keeps the textual form.
type TaskID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid task id: %s", data)
	}
	*id = TaskID(n.String())
	return nil
}

// MarshalJSON writes numeric IDs back as numbers in canonical form.
func (id TaskID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// Task represents a single task record.
type Task struct {
	ID          TaskID `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	DeadlineAt  string `json:"deadline_at" yaml:"deadline_at"` // ISO-8601, kept verbatim
	IsImportant bool   `json:"is_important" yaml:"is_important"`
	IsUrgent    bool   `json:"is_urgent" yaml:"is_urgent"`
	Quadrant    string `json:"quadrant" yaml:"quadrant"`
	Completed   bool   `json:"completed" yaml:"completed"`

	DaysUntilDeadline *int   `json:"days_until_deadline,omitempty" yaml:"days_until_deadline,omitempty"`
	CreatedAt         string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CompletedAt       string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DeadlineAt  string `json:"deadline_at"`
	IsImportant bool   `json:"is_important"`
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DeadlineAt  *string `json:"deadline_at,omitempty"`
	IsImportant *bool   `json:"is_important,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// User is the current account as returned by the API.
type User struct {
	ID       int    `json:"id,omitempty" yaml:"id,omitempty"`
	Nickname string `json:"nickname" yaml:"nickname"`
	Email    string `json:"email" yaml:"email"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries only the fields being changed.
// Empty fields are omitted and mean "leave unchanged".
type ProfileUpdate struct {
	Nickname string `json:"nickname,omitempty"`
	Password string `json:"password,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Nickname == "" && u.Password == ""
}

// Stats is the per-user task summary.
type Stats struct {
	TotalTasks int            `json:"total_tasks" yaml:"total_tasks"`
	ByQuadrant map[string]int `json:"by_quadrant" yaml:"by_quadrant"`
	ByStatus   map[string]int `json:"by_status" yaml:"by_status"`
}

// NormalizeQuadrant upper-cases and trims a quadrant label.
func NormalizeQuadrant(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}
