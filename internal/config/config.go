// Package config handles the XDG configuration directory, the optional
// config.toml settings file and the stored session token.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/oauth2"

	"quadtask/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "quadtask"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.toml"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// EnvBaseURL overrides base_url from the settings file.
	EnvBaseURL = "QUADTASK_URL"

	// DefaultBaseURL is used when neither the settings file nor the environment set one.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeoutSeconds bounds every API call.
	DefaultTimeoutSeconds = 10

	// FilterAll shows every task.
	FilterAll = "all"
)

// ErrNoToken is returned by LoadToken when no session is stored.
var ErrNoToken = errors.New("not logged in")

// Settings is the content of config.toml.
type Settings struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	DefaultFilter  string `toml:"default_filter"`
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	filters := []interface{}{FilterAll}
	for _, q := range service.Quadrants {
		filters = append(filters, q)
	}
	return validation.ValidateStruct(s,
		validation.Field(&s.BaseURL, validation.Required, is.URL),
		validation.Field(&s.TimeoutSeconds, validation.Min(1)),
		validation.Field(&s.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&s.DefaultFilter, validation.In(filters...)),
	)
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Stdin is read for interactive confirmations.
	Stdin io.Reader

	// Logger is the diagnostic logger. Nil discards.
	Logger *log.Logger
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/quadtask or $HOME/.config/quadtask.
// Settings are read from config.toml when present, then from the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir: dir,
		Settings: Settings{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			LogLevel:       "warn",
			DefaultFilter:  FilterAll,
		},
	}

	if _, err := os.Stat(cfg.SettingsPath()); err == nil {
		if _, err := toml.DecodeFile(cfg.SettingsPath(), &cfg.Settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", SettingsFile, err)
		}
	}
	if url := strings.TrimSpace(os.Getenv(EnvBaseURL)); url != "" {
		cfg.BaseURL = url
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.DefaultFilter = normalizeFilter(cfg.DefaultFilter)

	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return cfg, nil
}

func normalizeFilter(f string) string {
	f = strings.TrimSpace(f)
	if f == "" || strings.EqualFold(f, FilterAll) {
		return FilterAll
	}
	return service.NormalizeQuadrant(f)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Log returns the diagnostic logger, or a discarding one.
func (c *Config) Log() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

// Filter returns the configured default filter, "all" when unset.
func (c *Config) Filter() string {
	return normalizeFilter(c.DefaultFilter)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// SaveToken stores a bearer access token with mode 0600.
func (c *Config) SaveToken(accessToken string) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// LoadToken reads the stored token.
// Returns ErrNoToken if there is none.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	if token.AccessToken == "" {
		return nil, ErrNoToken
	}
	return &token, nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
