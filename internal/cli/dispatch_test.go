package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"quadtask/internal/cli"
	"quadtask/internal/commands"
	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
	"quadtask/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// loggedIn points the default config dir at a temp dir holding a session
// token and returns that dir.
func loggedIn(t *testing.T) string {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := config.DefaultConfigDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	if err := cfg.SaveToken(testutil.ValidToken); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	return dir
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, stderr, code := run(t, dispatcher, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	stdout, _, code := run(t, dispatcher, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "quadtask 0.1.0\n" {
		t.Errorf("expected %q, got %q", "quadtask 0.1.0\n", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))

	_, stderr, code := run(t, dispatcher, "list", "--filter")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -filter\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: quadtask login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if stdout != "" || len(svc.Calls()) != 0 {
		t.Errorf("expected no output and no requests, got %q / %v", stdout, svc.Ops())
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	loggedIn(t)
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Fix prod", Quadrant: "Q1"})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))

	stdout, stderr, code := run(t, dispatcher)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Fix prod [Q1]\ntotal: 1  done: 0  active: 1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestDispatcher_LoginDoesNotNeedToken(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	dir := t.TempDir()

	stdout, stderr, code := run(t, dispatcher, "login", "--config", dir, "--email", "user@example.com", "--password", "secret")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to be stored")
	}
}

func TestDispatcher_ConfirmReadsStdin(t *testing.T) {
	dir := loggedIn(t)
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Fix prod", Quadrant: "Q1"})
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	dispatcher.Stdin = strings.NewReader("yes\n")

	_, _, code := run(t, dispatcher, "rm", "--config", dir, "--quiet", "1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.Count("DeleteTask") != 1 {
		t.Errorf("expected delete, got %v", svc.Ops())
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	dir := loggedIn(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("invalid base url")
	})

	_, stderr, code := run(t, dispatcher, "stats", "--config", dir)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: invalid base url\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_InvalidSettings(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "not a url")

	_, stderr, code := run(t, cli.NewDispatcher(commands.DefaultRegistry, nil), "version", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid config.toml") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
