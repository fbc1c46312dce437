package board

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quadtask/internal/service"
)

const (
	// DateLayout is the date-only form field format.
	DateLayout = "2006-01-02"

	// timestampLayout matches what browsers send for a date at UTC midnight.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrRequired is returned when the title or the deadline is empty.
var ErrRequired = errors.New("title and deadline are required")

// Mode is the state of the task form: Create or Editing.
type Mode interface {
	isMode()
}

// Create means saving the form creates a new task.
type Create struct{}

// Editing means saving the form updates the task with ID.
type Editing struct {
	ID service.TaskID
}

func (Create) isMode()  {}
func (Editing) isMode() {}

// Form holds the editable task fields.
// Deadline is date-only (YYYY-MM-DD).
type Form struct {
	Title       string
	Description string
	Deadline    string
	Important   bool
}

// FormFor populates a form from an existing task.
func FormFor(t service.Task) Form {
	return Form{
		Title:       t.Title,
		Description: t.Description,
		Deadline:    DeadlineDate(t.DeadlineAt),
		Important:   t.IsImportant,
	}
}

// Validate checks the required fields, then the date format.
func (f Form) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Deadline = strings.TrimSpace(f.Deadline)
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Deadline, validation.Required),
	); err != nil {
		return ErrRequired
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.Deadline, validation.Date(DateLayout).Error("must be a date like 2024-05-01")),
	)
}

// Input converts the form into a create payload.
func (f Form) Input() (service.TaskInput, error) {
	deadline, err := DeadlineTimestamp(f.Deadline)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		DeadlineAt:  deadline,
		IsImportant: f.Important,
	}, nil
}

// Patch converts the form into a full-edit update payload.
func (f Form) Patch() (service.TaskPatch, error) {
	in, err := f.Input()
	if err != nil {
		return service.TaskPatch{}, err
	}
	return service.TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		DeadlineAt:  &in.DeadlineAt,
		IsImportant: &in.IsImportant,
	}, nil
}

// DeadlineDate returns the date part of an ISO-8601 timestamp.
func DeadlineDate(ts string) string {
	date, _, _ := strings.Cut(strings.TrimSpace(ts), "T")
	return date
}

// DeadlineTimestamp converts a date-only value to a UTC-midnight timestamp,
// e.g. 2024-05-01 -> 2024-05-01T00:00:00.000Z.
func DeadlineTimestamp(date string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", err
	}
	return t.UTC().Format(timestampLayout), nil
}
