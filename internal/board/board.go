package board

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"quadtask/internal/service"
)

// User-facing messages.
const (
	MsgRequired     = "title and deadline are required"
	MsgSaveFailed   = "failed to save task:"
	MsgToggleFailed = "failed to update task"
	MsgDeleteFailed = "failed to delete task"
	MsgConfirmTitle = "Delete task?"
)

var (
	// ErrRejected is returned when local validation stopped an action.
	// The user has already been alerted.
	ErrRejected = errors.New("rejected")

	// ErrDeclined is returned when the user declined a confirmation.
	ErrDeclined = errors.New("declined")
)

// Notifier shows blocking messages and asks for confirmation.
type Notifier interface {
	// Alert reports a failure to the user.
	Alert(msg string)

	// Confirm asks a yes/no question.
	Confirm(prompt string) bool
}

// State is the client-local UI state.
type State struct {
	Filter    Filter
	Mode      Mode
	FormOpen  bool
	LastError error // last load failure, nil after a successful load
}

// Board drives the task list: every change is followed by a full reload.
type Board struct {
	svc   service.Service
	ui    Notifier
	log   *log.Logger
	State State
	View  View
}

// New creates a board showing all tasks in create mode.
func New(svc service.Service, ui Notifier, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Board{
		svc: svc,
		ui:  ui,
		log: logger,
		State: State{
			Filter: All,
			Mode:   Create{},
		},
	}
}

// Load sets the filter, fetches the full task collection and re-renders.
// Failures are logged, not alerted, and leave an empty view.
func (b *Board) Load(ctx context.Context, filter Filter) error {
	if filter == "" {
		filter = All
	}
	b.State.Filter = filter

	tasks, err := b.svc.ListTasks(ctx)
	if err != nil {
		b.log.Warn("failed to load tasks", "err", err)
		b.View = View{Filter: filter}
		b.State.LastError = err
		return err
	}

	b.View = Render(tasks, filter)
	b.State.LastError = nil
	b.log.Debug("tasks loaded", "filter", filter, "total", b.View.Total, "done", b.View.Done)
	return nil
}

// Reload loads again at the current filter.
func (b *Board) Reload(ctx context.Context) error {
	return b.Load(ctx, b.State.Filter)
}

// Toggle sets a task's completion, then reloads at the current filter.
// The row is not updated optimistically.
func (b *Board) Toggle(ctx context.Context, id service.TaskID, completed bool) error {
	_, err := b.svc.UpdateTask(ctx, id, service.TaskPatch{Completed: &completed})
	if err != nil {
		b.ui.Alert(fmt.Sprintf("%s: %v", MsgToggleFailed, err))
	}
	if loadErr := b.Reload(ctx); err == nil {
		err = loadErr
	}
	return err
}

// Delete asks for confirmation, deletes the task and reloads.
// Declining issues no request.
func (b *Board) Delete(ctx context.Context, id service.TaskID) error {
	if !b.ui.Confirm(MsgConfirmTitle) {
		return ErrDeclined
	}
	err := b.svc.DeleteTask(ctx, id)
	if err != nil {
		b.ui.Alert(fmt.Sprintf("%s: %v", MsgDeleteFailed, err))
	}
	if loadErr := b.Reload(ctx); err == nil {
		err = loadErr
	}
	return err
}

// OpenCreate switches to create mode and returns an empty form.
func (b *Board) OpenCreate() Form {
	b.State.Mode = Create{}
	b.State.FormOpen = true
	return Form{}
}

// OpenEdit switches to editing t and returns the populated form.
func (b *Board) OpenEdit(t service.Task) Form {
	b.State.Mode = Editing{ID: t.ID}
	b.State.FormOpen = true
	return FormFor(t)
}

// Close hides the form without saving.
func (b *Board) Close() {
	b.State.FormOpen = false
}

// Save validates the form and creates or updates depending on the mode.
// On success the form closes, the mode resets to Create and the list reloads.
func (b *Board) Save(ctx context.Context, form Form) error {
	if err := form.Validate(); err != nil {
		if errors.Is(err, ErrRequired) {
			b.ui.Alert(MsgRequired)
		} else {
			b.ui.Alert(err.Error())
		}
		return ErrRejected
	}

	var err error
	switch mode := b.State.Mode.(type) {
	case Editing:
		var patch service.TaskPatch
		if patch, err = form.Patch(); err == nil {
			_, err = b.svc.UpdateTask(ctx, mode.ID, patch)
		}
	default:
		var in service.TaskInput
		if in, err = form.Input(); err == nil {
			_, err = b.svc.CreateTask(ctx, in)
		}
	}
	if err != nil {
		b.ui.Alert(MsgSaveFailed + "\n" + failureText(err))
		return err
	}

	b.State.FormOpen = false
	b.State.Mode = Create{}
	return b.Reload(ctx)
}

// failureText is the raw response body when there is one.
func failureText(err error) string {
	var httpErr *service.HTTPError
	if errors.As(err, &httpErr) && httpErr.Body != "" {
		return httpErr.Body
	}
	return err.Error()
}
