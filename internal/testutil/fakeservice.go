// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"quadtask/internal/service"
)

// Call records one invocation on FakeService.
type Call struct {
	Op      string // method name, e.g. "ListTasks"
	ID      service.TaskID
	Input   service.TaskInput
	Patch   service.TaskPatch
	Profile service.ProfileUpdate
	Reg     service.Registration
}

// FakeService is an in-memory implementation of service.Service for testing.
// Every method call is recorded, including failed ones.
type FakeService struct {
	mu       sync.RWMutex
	tasks    []service.Task
	user     service.User
	password string
	nextID   int
	calls    []Call

	// Error injection for testing
	LoginErr      error
	RegisterErr   error
	MeErr         error
	UpdateMeErr   error
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	StatsErr      error
}

// NewFakeService creates a new FakeService with one account
// (user@example.com / secret) and no tasks.
func NewFakeService() *FakeService {
	return &FakeService{
		user:     service.User{ID: 1, Nickname: "user", Email: "user@example.com", Role: "user"},
		password: "secret",
		nextID:   1,
	}
}

// AddTask adds a task. An empty ID is assigned the next numeric ID.
func (f *FakeService) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = f.newID()
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// User returns the stored account.
func (f *FakeService) User() service.User {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user
}

// Password returns the stored account password.
func (f *FakeService) Password() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.password
}

// Calls returns the recorded calls in order.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]Call, len(f.calls))
	copy(result, f.calls)
	return result
}

// Ops returns the recorded method names in order.
func (f *FakeService) Ops() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (f *FakeService) Count(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeService) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *FakeService) newID() service.TaskID {
	for {
		id := service.TaskID(strconv.Itoa(f.nextID))
		f.nextID++
		if f.indexOf(id) < 0 {
			return id
		}
	}
}

func (f *FakeService) indexOf(id service.TaskID) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (string, error) {
	f.record(Call{Op: "Login"})
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if email != f.user.Email || password != f.password {
		return "", service.ErrInvalidCredentials
	}
	return "token-" + strconv.Itoa(f.user.ID), nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.User, error) {
	f.record(Call{Op: "Register", Reg: reg})
	if f.RegisterErr != nil {
		return service.User{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = service.User{ID: f.user.ID + 1, Nickname: reg.Nickname, Email: reg.Email, Role: "user"}
	f.password = reg.Password
	return f.user, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.record(Call{Op: "Me"})
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	return f.User(), nil
}

// UpdateMe implements service.Service.
func (f *FakeService) UpdateMe(ctx context.Context, update service.ProfileUpdate) error {
	f.record(Call{Op: "UpdateMe", Profile: update})
	if f.UpdateMeErr != nil {
		return f.UpdateMeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if update.Nickname != "" {
		f.user.Nickname = update.Nickname
	}
	if update.Password != "" {
		f.password = update.Password
	}
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record(Call{Op: "ListTasks"})
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
// The quadrant is derived from importance only; urgency is not modelled.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.record(Call{Op: "CreateTask", Input: in})
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{
		ID:          f.newID(),
		Title:       in.Title,
		Description: in.Description,
		DeadlineAt:  in.DeadlineAt,
		IsImportant: in.IsImportant,
		Quadrant:    quadrantFor(in.IsImportant),
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id service.TaskID, patch service.TaskPatch) (service.Task, error) {
	f.record(Call{Op: "UpdateTask", ID: id, Patch: patch})
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	t := &f.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DeadlineAt != nil {
		t.DeadlineAt = *patch.DeadlineAt
	}
	if patch.IsImportant != nil {
		t.IsImportant = *patch.IsImportant
		t.Quadrant = quadrantFor(t.IsImportant)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.TaskID) error {
	f.record(Call{Op: "DeleteTask", ID: id})
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return service.ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// Stats implements service.Service.
func (f *FakeService) Stats(ctx context.Context) (service.Stats, error) {
	f.record(Call{Op: "Stats"})
	if f.StatsErr != nil {
		return service.Stats{}, f.StatsErr
	}
	return ComputeStats(f.Tasks()), nil
}

// ComputeStats builds the summary the server would return for tasks.
func ComputeStats(tasks []service.Task) service.Stats {
	stats := service.Stats{
		TotalTasks: len(tasks),
		ByQuadrant: map[string]int{"Q1": 0, "Q2": 0, "Q3": 0, "Q4": 0},
		ByStatus:   map[string]int{"completed": 0, "pending": 0},
	}
	for _, t := range tasks {
		if _, ok := stats.ByQuadrant[t.Quadrant]; ok {
			stats.ByQuadrant[t.Quadrant]++
		}
		if t.Completed {
			stats.ByStatus["completed"]++
		} else {
			stats.ByStatus["pending"]++
		}
	}
	return stats
}

func quadrantFor(important bool) string {
	if important {
		return "Q2"
	}
	return "Q4"
}
