// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"quadtask/internal/board"
	"quadtask/internal/service"
)

// Format selects how structured results are printed.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses a --format value. Empty means Text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (want text, json, yaml)", s)
	}
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot encode as %s", format)
	}
}

// FormatRow formats one task line.
// Format: "{ID:>4}  [x] {TITLE} [{QUADRANT}]" plus "  (due {DATE})" when set.
// Completed titles are struck through when w is a terminal.
func FormatRow(w io.Writer, row board.Row) {
	mark := "[ ]"
	label := fmt.Sprintf("%s [%s]", normalizeTitle(row.Title), row.Quadrant)
	if row.Completed {
		mark = "[x]"
		label = lipgloss.NewRenderer(w).NewStyle().Strikethrough(true).Render(label)
	}
	fmt.Fprintf(w, "%4s  %s %s", row.ID, mark, label)
	if date := board.DeadlineDate(row.DeadlineAt); date != "" {
		fmt.Fprintf(w, "  (due %s)", date)
	}
	fmt.Fprintln(w)
}

// FormatCounters formats the visible totals.
func FormatCounters(w io.Writer, view board.View) {
	fmt.Fprintf(w, "total: %d  done: %d  active: %d\n", view.Total, view.Done, view.Active())
}

// FormatBoard formats every row followed by the counters.
func FormatBoard(w io.Writer, view board.View) {
	for _, row := range view.Rows {
		FormatRow(w, row)
	}
	FormatCounters(w, view)
}

// FormatTaskDetail formats every field of a single task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", task.Description)
	}
	if date := board.DeadlineDate(task.DeadlineAt); date != "" {
		fmt.Fprintf(w, "deadline:    %s\n", date)
	}
	fmt.Fprintf(w, "quadrant:    %s\n", task.Quadrant)
	fmt.Fprintf(w, "important:   %t\n", task.IsImportant)
	fmt.Fprintf(w, "completed:   %t\n", task.Completed)
}

// FormatProfile formats the current user.
func FormatProfile(w io.Writer, user service.User) {
	fmt.Fprintf(w, "nickname: %s\n", user.Nickname)
	fmt.Fprintf(w, "email:    %s\n", user.Email)
}

// FormatStats formats the per-quadrant and per-status counts.
func FormatStats(w io.Writer, stats service.Stats) {
	fmt.Fprintf(w, "total: %d\n", stats.TotalTasks)
	for _, q := range service.Quadrants {
		fmt.Fprintf(w, "%s:    %d\n", q, stats.ByQuadrant[q])
	}
	fmt.Fprintf(w, "completed: %d\n", stats.ByStatus["completed"])
	fmt.Fprintf(w, "pending:   %d\n", stats.ByStatus["pending"])
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
