// Package restapi implements the service.Service interface against the
// task manager's HTTP+JSON API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"quadtask/internal/config"
	"quadtask/internal/service"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	mePath       = "/users/me"
	tasksPath    = "/tasks"
	statsPath    = "/stats/"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	plain   *http.Client // unauthenticated endpoints
	authed  *http.Client // bearer token attached
	timeout time.Duration
	log     *log.Logger
}

// Options configures a Client built with NewWithHTTPClient.
type Options struct {
	// Token is the stored session; nil leaves requests unauthenticated.
	Token *oauth2.Token

	// Timeout bounds each call. Zero means config.DefaultTimeoutSeconds.
	Timeout time.Duration

	// Logger receives request-level debug lines. Nil discards.
	Logger *log.Logger
}

// New creates a client from config.
// A missing token is not an error: login and register work without one,
// and authenticated calls then fail with a 401 from the server.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	token, err := cfg.LoadToken()
	if err != nil && !errors.Is(err, config.ErrNoToken) {
		return nil, err
	}
	return NewWithHTTPClient(ctx, cfg.BaseURL, http.DefaultClient, Options{
		Token:   token,
		Timeout: cfg.Timeout(),
		Logger:  cfg.Log(),
	})
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, baseURL string, httpClient *http.Client, opts Options) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeoutSeconds * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	authed := httpClient
	if opts.Token != nil {
		// oauth2 wraps the transport of the client carried in ctx.
		authed = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, httpClient), oauth2.StaticTokenSource(opts.Token))
	}

	return &Client{
		baseURL: baseURL,
		plain:   httpClient,
		authed:  authed,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}, nil
}

// Login exchanges credentials for an access token using the OAuth2
// password grant: a form-encoded POST of username and password.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + loginPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	c.log.Debug("request", "method", http.MethodPost, "path", loginPath)
	token, err := conf.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.plain), email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			c.log.Debug("login rejected", "status", retrieveErr.Response.StatusCode)
			return "", service.ErrInvalidCredentials
		}
		return "", wrapError(err)
	}
	return token.AccessToken, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.User, error) {
	var user service.User
	if err := c.do(ctx, c.plain, http.MethodPost, registerPath, reg, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// Me returns the current user.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var user service.User
	if err := c.do(ctx, c.authed, http.MethodGet, mePath, nil, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// UpdateMe applies a profile update to the current user.
func (c *Client) UpdateMe(ctx context.Context, update service.ProfileUpdate) error {
	return c.do(ctx, c.authed, http.MethodPut, mePath, update, nil)
}

// ListTasks returns the full task collection in API order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, c.authed, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, http.MethodPost, tasksPath+"/", in, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id service.TaskID, patch service.TaskPatch) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, http.MethodPut, taskPath(id), patch, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id service.TaskID) error {
	return c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

// Stats returns task counts by quadrant and status.
func (c *Client) Stats(ctx context.Context) (service.Stats, error) {
	var stats service.Stats
	if err := c.do(ctx, c.authed, http.MethodGet, statsPath, nil, &stats); err != nil {
		return service.Stats{}, err
	}
	return stats, nil
}

func taskPath(id service.TaskID) string {
	return tasksPath + "/" + url.PathEscape(string(id))
}

// do sends one request with an optional JSON body and decodes an optional
// JSON response. Non-2xx responses become *service.HTTPError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("request", "method", method, "path", path)
	res, err := hc.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer googleapi.CloseBody(res)
	c.log.Debug("response", "method", method, "path", path, "status", res.StatusCode)

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return wrapError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

// wrapError maps transport and status errors to service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &service.HTTPError{StatusCode: apiErr.Code, Body: apiErr.Body}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	return err
}
