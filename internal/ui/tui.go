// Package ui provides the interactive terminal board.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"quadtask/internal/account"
	"quadtask/internal/board"
	"quadtask/internal/config"
	"quadtask/internal/logging"
	"quadtask/internal/service"
)

// LogFile receives diagnostics while the board owns the terminal.
const LogFile = "quadtask.log"

// ErrNotTTY is returned when stdout is not a terminal.
var ErrNotTTY = errors.New("ui requires a terminal")

type mode int

const (
	modeList mode = iota
	modeTask
	modeConfirm
	modeProfile
)

// Task form field order.
const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldImportant
)

// Profile form field order.
const (
	fieldNickname = iota
	fieldPassword
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// prompter is the board's notifier inside the TUI.
// Alerts land in the status line; confirmation is answered by the y/n key
// pressed before the board call.
type prompter struct {
	last    string
	approve bool
}

func (p *prompter) Alert(msg string) { p.last = msg }

func (p *prompter) Confirm(string) bool { return p.approve }

func (p *prompter) take() string {
	msg := p.last
	p.last = ""
	return msg
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx     context.Context
	svc     service.Service
	board   *board.Board
	prompt  *prompter
	cursor  int
	mode    mode
	fields  []textinput.Model
	focus   int
	status  string
	pending *service.Task
	profile service.User
}

// Run starts the board on the terminal.
// Diagnostics go to LogFile in the config directory.
func Run(ctx context.Context, cfg *config.Config, svc service.Service) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(cfg.Dir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	filter, err := board.ParseFilter(cfg.Filter())
	if err != nil {
		return err
	}
	m := New(ctx, svc, filter, logging.New(f, cfg.LogLevel, cfg.Debug))

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// New creates a model and loads the list at filter.
func New(ctx context.Context, svc service.Service, filter board.Filter, logger *log.Logger) Model {
	p := &prompter{}
	m := Model{
		ctx:    ctx,
		svc:    svc,
		board:  board.New(svc, p, logger),
		prompt: p,
		mode:   modeList,
	}
	m.load(filter)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeTask:
			return m.updateTaskForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg.String())
		case modeProfile:
			return m.updateProfileForm(msg)
		default:
			return m.updateList(msg.String())
		}
	case tea.WindowSizeMsg:
		for i := range m.fields {
			m.fields[i].Width = msg.Width - 20
		}
	}
	return m, nil
}

// Status returns the current status line.
func (m Model) Status() string {
	return m.status
}

// Board returns the underlying board.
func (m Model) Board() *board.Board {
	return m.board
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	rows := m.board.View.Rows
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(rows))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(rows))
	case "0":
		m.load(board.All)
	case "1", "2", "3", "4":
		m.load(board.Filter("Q" + key))
	case "r":
		m.load(m.board.State.Filter)
	case " ":
		if task, ok := m.selected(); ok {
			_ = m.board.Toggle(m.ctx, task.ID, !task.Completed)
			m.afterBoardCall()
		}
	case "d":
		if task, ok := m.selected(); ok {
			m.pending = &task
			m.mode = modeConfirm
			m.status = fmt.Sprintf("%s %q (y/n)", board.MsgConfirmTitle, task.Title)
		}
	case "n":
		m.openTaskForm(m.board.OpenCreate())
	case "enter", "e":
		if task, ok := m.selected(); ok {
			m.openTaskForm(m.board.OpenEdit(task))
		}
	case "p":
		m.openProfileForm()
	}
	return m, nil
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.prompt.approve = true
		_ = m.board.Delete(m.ctx, m.pending.ID)
		m.prompt.approve = false
		m.afterBoardCall()
	case "n", "N", "esc":
		m.status = "delete cancelled"
	default:
		return m, nil
	}
	m.pending = nil
	m.mode = modeList
	return m, nil
}

func (m Model) updateTaskForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.board.Close()
		m.closeForm()
		m.status = "edit cancelled"
		return m, nil
	case "ctrl+s":
		return m.saveTask()
	case "enter":
		if m.focus == len(m.fields)-1 {
			return m.saveTask()
		}
		m.focusField(m.focus + 1)
		return m, nil
	case "tab", "down":
		m.focusField(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusField(m.focus - 1)
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m Model) saveTask() (tea.Model, tea.Cmd) {
	form := board.Form{
		Title:       m.fields[fieldTitle].Value(),
		Description: m.fields[fieldDescription].Value(),
		Deadline:    m.fields[fieldDeadline].Value(),
		Important:   parseYN(m.fields[fieldImportant].Value()),
	}
	err := m.board.Save(m.ctx, form)
	m.afterBoardCall()
	if m.board.State.FormOpen {
		return m, nil
	}
	m.closeForm()
	if err == nil {
		m.status = "saved"
	}
	return m, nil
}

func (m Model) updateProfileForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "profile unchanged"
		return m, nil
	case "ctrl+s":
		return m.saveProfile()
	case "enter":
		if m.focus == len(m.fields)-1 {
			return m.saveProfile()
		}
		m.focusField(m.focus + 1)
		return m, nil
	case "tab", "down", "shift+tab", "up":
		m.focusField(1 - m.focus)
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m Model) saveProfile() (tea.Model, tea.Cmd) {
	err := account.SaveProfile(m.ctx, m.svc, account.ProfileForm{
		Nickname: m.fields[fieldNickname].Value(),
		Password: m.fields[fieldPassword].Value(),
	})
	switch {
	case errors.Is(err, account.ErrNothingToUpdate):
		m.status = err.Error()
		return m, nil
	case err != nil:
		m.status = account.ErrProfileUpdateFailed.Error()
		return m, nil
	}
	m.closeForm()
	m.status = "profile updated"
	return m, nil
}

func (m *Model) load(filter board.Filter) {
	if err := m.board.Load(m.ctx, filter); err != nil {
		m.status = "could not load tasks"
	} else {
		m.status = ""
	}
	m.cursor = clampCursor(m.cursor, len(m.board.View.Rows))
}

// afterBoardCall surfaces any alert and keeps the cursor in range.
func (m *Model) afterBoardCall() {
	if msg := m.prompt.take(); msg != "" {
		m.status = msg
	} else if m.board.State.LastError != nil {
		m.status = "could not load tasks"
	} else {
		m.status = ""
	}
	m.cursor = clampCursor(m.cursor, len(m.board.View.Rows))
}

func (m Model) selected() (service.Task, bool) {
	rows := m.board.View.Rows
	if len(rows) == 0 {
		return service.Task{}, false
	}
	return rows[clampCursor(m.cursor, len(rows))].Task, true
}

func (m *Model) openTaskForm(form board.Form) {
	important := ""
	if form.Important {
		important = "y"
	}
	m.fields = []textinput.Model{
		newField("Title", form.Title, 256),
		newField("Description", form.Description, 1024),
		newField(board.DateLayout, form.Deadline, 10),
		newField("important? y/n", important, 3),
	}
	m.mode = modeTask
	m.focusField(fieldTitle)
	m.status = ""
}

func (m *Model) openProfileForm() {
	user, err := account.LoadProfile(m.ctx, m.svc)
	if err != nil {
		m.status = account.ErrProfileLoadFailed.Error()
		return
	}
	m.profile = user
	password := newField("New password", "", 128)
	password.EchoMode = textinput.EchoPassword
	m.fields = []textinput.Model{
		newField("Nickname", user.Nickname, 64),
		password,
	}
	m.mode = modeProfile
	m.focusField(fieldNickname)
	m.status = ""
}

func (m *Model) closeForm() {
	m.fields = nil
	m.focus = 0
	m.mode = modeList
}

func (m *Model) focusField(i int) {
	m.focus = wrapIndex(i, len(m.fields))
	for j := range m.fields {
		if j == m.focus {
			m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
}

func newField(placeholder, value string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

func (m Model) View() string {
	var b strings.Builder
	view := m.board.View

	b.WriteString(titleStyle.Render(fmt.Sprintf("quadtask [%s]", m.board.State.Filter)))
	b.WriteString("\n\n")

	if len(view.Rows) == 0 {
		b.WriteString("No tasks. Press 'n' to add one.\n")
	}
	for i, row := range view.Rows {
		b.WriteString(renderRow(row, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\ntotal: %d  done: %d  active: %d\n", view.Total, view.Done, view.Active()))

	switch m.mode {
	case modeTask:
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(taskFormTitle(m.board.State.Mode)))
		b.WriteString("\n")
		for _, f := range m.fields {
			b.WriteString(f.View())
			b.WriteString("\n")
		}
	case modeProfile:
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Profile"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.profile.Email))
		b.WriteString("\n")
		for _, f := range m.fields {
			b.WriteString(f.View())
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpFor(m.mode)))
	return b.String()
}

func renderRow(row board.Row, selected bool) string {
	mark := "[ ]"
	label := row.Label
	if row.Completed {
		mark = "[x]"
		label = doneStyle.Render(label)
	}
	line := fmt.Sprintf("%4s %s %s", row.ID, mark, label)
	if date := board.DeadlineDate(row.DeadlineAt); date != "" {
		line += "  (due " + date + ")"
	}
	if selected {
		return cursorStyle.Render(">") + line
	}
	return " " + line
}

func taskFormTitle(mode board.Mode) string {
	if e, ok := mode.(board.Editing); ok {
		return "Edit task " + string(e.ID)
	}
	return "New task"
}

func helpFor(mode mode) string {
	switch mode {
	case modeTask, modeProfile:
		return "tab move • enter next/save • ctrl+s save • esc cancel"
	case modeConfirm:
		return "y delete • n cancel"
	default:
		return "0 all • 1-4 quadrant • space toggle • n new • e edit • d delete • p profile • r reload • q quit"
	}
}

func parseYN(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func wrapIndex(idx, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx % n) + n) % n
}

func clampCursor(cur, n int) int {
	if n == 0 || cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
