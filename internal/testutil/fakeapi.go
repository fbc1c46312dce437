package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"quadtask/internal/service"
)

// ValidToken is the bearer token FakeAPI accepts and issues.
const ValidToken = "token-1"

// Request is one request received by FakeAPI.
type Request struct {
	Method        string
	Path          string
	ContentType   string
	Authorization string
	Body          []byte
}

// FakeAPI serves the task manager HTTP contract on top of a FakeService.
// It records every request it receives.
type FakeAPI struct {
	*httptest.Server
	Svc *FakeService

	mu       sync.Mutex
	requests []Request
}

// NewFakeAPI starts a server backed by svc. It is closed when the test ends.
func NewFakeAPI(t testing.TB, svc *FakeService) *FakeAPI {
	t.Helper()
	api := &FakeAPI{Svc: svc}

	r := chi.NewRouter()
	r.Use(api.record)
	r.Post("/auth/login", api.login)
	r.Post("/auth/register", api.register)
	r.Group(func(r chi.Router) {
		r.Use(requireBearer)
		r.Get("/users/me", api.me)
		r.Put("/users/me", api.updateMe)
		r.Get("/tasks", api.listTasks)
		r.Post("/tasks/", api.createTask)
		r.Put("/tasks/{id}", api.updateTask)
		r.Delete("/tasks/{id}", api.deleteTask)
		r.Get("/stats/", api.stats)
	})

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// Requests returns the recorded requests in order.
func (a *FakeAPI) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Request, len(a.requests))
	copy(result, a.requests)
	return result
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		a.mu.Lock()
		a.requests = append(a.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		a.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+ValidToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	token, err := a.Svc.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	user, err := a.Svc.Register(r.Context(), reg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	user, err := a.Svc.Me(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *FakeAPI) updateMe(w http.ResponseWriter, r *http.Request) {
	var update service.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	if err := a.Svc.UpdateMe(r.Context(), update); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.Svc.ListTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	task, err := a.Svc.CreateTask(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	task, err := a.Svc.UpdateTask(r.Context(), service.TaskID(chi.URLParam(r, "id")), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.Svc.DeleteTask(r.Context(), service.TaskID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *FakeAPI) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeError maps injected service errors to responses.
// An injected *service.HTTPError is replayed verbatim.
func writeError(w http.ResponseWriter, err error) {
	var httpErr *service.HTTPError
	switch {
	case errors.As(err, &httpErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpErr.StatusCode)
		io.WriteString(w, httpErr.Body)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": strings.TrimSpace(err.Error())})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
