// Package board holds the task list state machine: the active filter, the
// create/edit mode of the task form, and the view-model rendered from the
// last full load.
package board

import (
	"fmt"
	"strings"

	"quadtask/internal/service"
)

// Filter selects which tasks are shown: All or a quadrant label.
type Filter string

// All shows every task.
const All Filter = "all"

// ParseFilter parses "all" or a quadrant label (case-insensitive).
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(All)) {
		return All, nil
	}
	q := service.NormalizeQuadrant(s)
	for _, known := range service.Quadrants {
		if q == known {
			return Filter(q), nil
		}
	}
	return "", fmt.Errorf("invalid filter: %s (want all, %s)", s, strings.Join(service.Quadrants, ", "))
}

// Matches reports whether t is visible under f.
func (f Filter) Matches(t service.Task) bool {
	return f == All || f == "" || t.Quadrant == string(f)
}

// Row is one rendered task.
type Row struct {
	service.Task

	// Label is the display text: title followed by the quadrant.
	Label string
}

// View is the rendered task list and its counters.
// Counters cover only the rows visible under the filter.
type View struct {
	Filter Filter
	Rows   []Row
	Total  int
	Done   int
}

// Active returns the number of visible tasks not yet completed.
func (v View) Active() int {
	return v.Total - v.Done
}

// Render builds the view for tasks under filter, keeping API order.
func Render(tasks []service.Task, filter Filter) View {
	view := View{Filter: filter}
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		view.Total++
		if t.Completed {
			view.Done++
		}
		view.Rows = append(view.Rows, Row{
			Task:  t,
			Label: fmt.Sprintf("%s [%s]", t.Title, t.Quadrant),
		})
	}
	return view
}

// Find returns the visible row with the given id.
func (v View) Find(id service.TaskID) (Row, bool) {
	for _, r := range v.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}
