package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"reflect"
	"strings"
	"testing"

	"quadtask/internal/commands"
	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
	"quadtask/internal/testutil"
)

// runCommand parses args with the command's flags and runs it against svc.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, setup ...func(*config.Config)) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	cfg := &config.Config{
		Dir: t.TempDir(),
		Settings: config.Settings{
			BaseURL:        config.DefaultBaseURL,
			TimeoutSeconds: config.DefaultTimeoutSeconds,
			DefaultFilter:  config.FilterAll,
		},
	}
	for _, fn := range setup {
		fn(cfg)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func quiet(cfg *config.Config) { cfg.Quiet = true }

func stdin(s string) func(*config.Config) {
	return func(cfg *config.Config) { cfg.Stdin = strings.NewReader(s) }
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{Title: "Fix prod", Quadrant: "Q1", IsImportant: true, IsUrgent: true})
	svc.AddTask(service.Task{Title: "Read book", Quadrant: "Q2", IsImportant: true, Completed: true})
	svc.AddTask(service.Task{Title: "Answer email", Quadrant: "Q3", IsUrgent: true})
	svc.AddTask(service.Task{Title: "Plan week", Quadrant: "Q2", IsImportant: true, DeadlineAt: "2024-05-01T00:00:00.000Z"})
	return svc
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "quadtask 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"Usage:", "  add (create) ", "  ui (tui) ", "  undo ", "--filter"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_Topic(t *testing.T) {
	stdout, _, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, []string{"rm"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Usage:\n  quadtask rm [--yes] <id>\n\nDelete a task\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	_, stderr, code := runCommand(t, commands.NewHelpCmd(commands.DefaultRegistry), nil, []string{"nope"})
	if code != exitcode.UserError || stderr != "error: unknown command: nope\n" {
		t.Errorf("expected unknown command, got %d %q", code, stderr)
	}
}

func TestRegistry_RejectsDuplicateAlias(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.AddCmd{}); err == nil {
		t.Error("expected duplicate name error")
	}
	if cmd, ok := r.Find("create"); !ok || cmd.Name() != "add" {
		t.Error("alias should resolve to add")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("expected one command, got %d", got)
	}
}

func TestListCommand_Filter(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--filter", "q1"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "   1  [ ] Fix prod [Q1]\ntotal: 1  done: 0  active: 1\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_DefaultFilterFromConfig(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, func(cfg *config.Config) {
		cfg.DefaultFilter = "Q3"
	})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   3  [ ] Answer email [Q3]\ntotal: 1  done: 0  active: 1\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_All(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 4 rows and counters, got %q", stdout)
	}
	if !strings.HasPrefix(lines[1], "   2  [x] ") {
		t.Errorf("expected completed row, got %q", lines[1])
	}
	if lines[3] != "   4  [ ] Plan week [Q2]  (due 2024-05-01)" {
		t.Errorf("unexpected row %q", lines[3])
	}
	if lines[4] != "total: 4  done: 1  active: 3" {
		t.Errorf("unexpected counters %q", lines[4])
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil)
	if code != exitcode.Success || stderr != "" {
		t.Errorf("expected success, got %d %q", code, stderr)
	}
	expected := "no tasks found\ntotal: 0  done: 0  active: 0\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, nil, quiet)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	svc := seeded()

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--filter", "Q5"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid filter: Q5") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", svc.Ops())
	}
}

func TestListCommand_UnauthorizedIsNotAlerted(t *testing.T) {
	svc := seeded()
	svc.ListTasksErr = &service.HTTPError{StatusCode: 401, Body: `{"detail":"Not authenticated"}`}

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("expected no output, got %q / %q", stdout, stderr)
	}
}

func TestListCommand_JSON(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--format", "json", "--filter", "Q2"})
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}

	var doc struct {
		Filter string         `json:"filter"`
		Total  int            `json:"total"`
		Done   int            `json:"done"`
		Active int            `json:"active"`
		Tasks  []service.Task `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if doc.Filter != "Q2" || doc.Total != 2 || doc.Done != 1 || doc.Active != 1 {
		t.Errorf("unexpected document %+v", doc)
	}
	if len(doc.Tasks) != 2 || doc.Tasks[1].ID != "4" {
		t.Errorf("unexpected tasks %+v", doc.Tasks)
	}
}

func TestAddCommand(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc,
		[]string{"--deadline", "2030-06-15", "--important", "--filter", "Q2", "Water", "plants"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if got := svc.Ops(); !reflect.DeepEqual(got, []string{"CreateTask", "ListTasks"}) {
		t.Fatalf("expected POST then reload, got %v", got)
	}
	in := svc.Calls()[0].Input
	if in.Title != "Water plants" || in.DeadlineAt != "2030-06-15T00:00:00.000Z" || !in.IsImportant {
		t.Errorf("unexpected input %+v", in)
	}
	if !strings.Contains(stdout, "   5  [ ] Water plants [Q2]  (due 2030-06-15)\n") {
		t.Errorf("expected reloaded list with the new task, got %q", stdout)
	}
	if !strings.HasSuffix(stdout, "total: 3  done: 1  active: 2\n") {
		t.Errorf("expected Q2 counters, got %q", stdout)
	}
}

func TestAddCommand_QuietPrintsNothing(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--deadline", "2030-06-15", "Water"}, quiet)

	if code != exitcode.Success || stdout != "" {
		t.Errorf("expected silent success, got %d %q", code, stdout)
	}
}

func TestAddCommand_MissingDeadline(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Water", "plants"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title and deadline are required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if stdout != "" || len(svc.Calls()) != 0 {
		t.Errorf("expected no output and no requests, got %q / %v", stdout, svc.Ops())
	}
}

func TestAddCommand_InvalidDate(t *testing.T) {
	svc := seeded()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--deadline", "tomorrow", "Water"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if strings.Count(stderr, "error:") != 1 {
		t.Errorf("expected exactly one error line, got %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", svc.Ops())
	}
}

func TestAddCommand_ServerFailureShowsBody(t *testing.T) {
	svc := seeded()
	svc.CreateTaskErr = &service.HTTPError{StatusCode: 422, Body: `{"detail":"bad deadline"}`}

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--deadline", "2030-06-15", "Water"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: failed to save task:\n{\"detail\":\"bad deadline\"}\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if stdout != "" || svc.Count("ListTasks") != 0 {
		t.Errorf("failed save must not reload, got %q / %v", stdout, svc.Ops())
	}
}

func TestEditCommand(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "Plan month", "4"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if got := svc.Ops(); !reflect.DeepEqual(got, []string{"ListTasks", "UpdateTask", "ListTasks"}) {
		t.Fatalf("expected lookup, PUT, reload; got %v", got)
	}
	call := svc.Calls()[1]
	if call.ID != "4" || call.Patch.Title == nil || *call.Patch.Title != "Plan month" {
		t.Errorf("unexpected update %+v", call)
	}
	if call.Patch.DeadlineAt == nil || !strings.HasPrefix(*call.Patch.DeadlineAt, "2024-05-01") {
		t.Errorf("deadline must be kept, got %v", call.Patch.DeadlineAt)
	}
	if call.Patch.Completed != nil {
		t.Error("edit must not send completed")
	}
	if !strings.Contains(stdout, "Plan month [Q2]") {
		t.Errorf("expected reloaded list, got %q", stdout)
	}
}

func TestEditCommand_Important(t *testing.T) {
	svc := seeded()

	_, _, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--important", "false", "#4"}, quiet)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	patch := svc.Calls()[1].Patch
	if patch.IsImportant == nil || *patch.IsImportant {
		t.Errorf("expected is_important=false, got %+v", patch)
	}
}

func TestEditCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"missing id", []string{"--title", "x"}, "error: task id required\n"},
		{"bad id", []string{"--title", "x", "abc"}, "error: invalid task id: abc\n"},
		{"nothing to change", []string{"4"}, "error: nothing to change\n"},
		{"bad important", []string{"--important", "maybe", "4"}, "error: invalid value for --important: maybe\n"},
		{"unknown task", []string{"--title", "x", "99"}, "error: task not found: 99\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, tt.args)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
			if svc.Count("UpdateTask") != 0 {
				t.Error("expected no update")
			}
		})
	}
}

func TestDoneCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, commands.NewDoneCmd(true), svc, []string{"--filter", "Q1", "1"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	patch := svc.Calls()[0].Patch
	if patch.Completed == nil || !*patch.Completed || patch.Title != nil {
		t.Errorf("expected only completed=true, got %+v", patch)
	}
	if !strings.HasPrefix(stdout, "   1  [x] ") || !strings.HasSuffix(stdout, "total: 1  done: 1  active: 0\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestUndoCommand(t *testing.T) {
	svc := seeded()

	_, _, code := runCommand(t, commands.NewDoneCmd(false), svc, []string{"2"}, quiet)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	patch := svc.Calls()[0].Patch
	if patch.Completed == nil || *patch.Completed {
		t.Errorf("expected completed=false, got %+v", patch)
	}
	if svc.Tasks()[1].Completed {
		t.Error("task 2 should be pending")
	}
}

func TestDoneCommand_FailureStillReloads(t *testing.T) {
	svc := seeded()
	svc.UpdateTaskErr = &service.HTTPError{StatusCode: 500}

	stdout, stderr, code := runCommand(t, commands.NewDoneCmd(true), svc, []string{"1"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: failed to update task") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Count("ListTasks") != 1 || !strings.Contains(stdout, "total: 4") {
		t.Errorf("expected the list to be reloaded, got %q", stdout)
	}
}

func TestRmCommand_Yes(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"--yes", "3"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if got := svc.Ops(); !reflect.DeepEqual(got, []string{"DeleteTask", "ListTasks"}) {
		t.Errorf("expected DELETE then reload, got %v", got)
	}
	if stderr != "" {
		t.Errorf("expected no prompt, got %q", stderr)
	}
	if !strings.HasSuffix(stdout, "total: 3  done: 1  active: 2\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRmCommand_PromptAccepted(t *testing.T) {
	svc := seeded()

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"3"}, stdin("y\n"), quiet)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "Delete task? [y/N] " {
		t.Errorf("unexpected prompt %q", stderr)
	}
	if svc.Count("DeleteTask") != 1 {
		t.Error("expected the task to be deleted")
	}
}

func TestRmCommand_Declined(t *testing.T) {
	for name, setup := range map[string]func(*config.Config){
		"answered no": stdin("n\n"),
		"empty line":  stdin("\n"),
		"no input":    func(*config.Config) {},
	} {
		t.Run(name, func(t *testing.T) {
			svc := seeded()
			_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"3"}, setup)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if !strings.HasSuffix(stderr, "error: cancelled\n") {
				t.Errorf("unexpected stderr %q", stderr)
			}
			if len(svc.Calls()) != 0 {
				t.Errorf("declining must issue no request, got %v", svc.Ops())
			}
		})
	}
}

func TestStatsCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.StatsCmd{}, svc, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "total: 4\nQ1:    1\nQ2:    2\nQ3:    1\nQ4:    0\ncompleted: 1\npending:   3\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestStatsCommand_YAML(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.StatsCmd{}, svc, []string{"--format", "yaml"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "total_tasks: 4\n") || !strings.Contains(stdout, "  Q2: 2\n") {
		t.Errorf("unexpected yaml %q", stdout)
	}
}

func TestProfileCommand_Show(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ProfileCmd{}, svc, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "nickname: user\nemail:    user@example.com\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestProfileCommand_Update(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, _, code := runCommand(t, &commands.ProfileCmd{}, svc, []string{"--nickname", "trinity"})

	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("expected ok, got %d %q", code, stdout)
	}
	if svc.User().Nickname != "trinity" || svc.Password() != "secret" {
		t.Errorf("unexpected account state %+v", svc.User())
	}
}

func TestProfileCommand_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	_, stderr, code := runCommand(t, &commands.ProfileCmd{}, svc, []string{"--nickname", "  "})
	if code != exitcode.UserError || stderr != "error: nothing to update\n" {
		t.Errorf("expected nothing to update, got %d %q", code, stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", svc.Ops())
	}

	svc.MeErr = &service.HTTPError{StatusCode: 401}
	_, stderr, code = runCommand(t, &commands.ProfileCmd{}, svc, nil)
	if code != exitcode.AuthError || stderr != "error: failed to load profile\n" {
		t.Errorf("expected load failure, got %d %q", code, stderr)
	}

	svc.UpdateMeErr = &service.HTTPError{StatusCode: 500}
	_, stderr, code = runCommand(t, &commands.ProfileCmd{}, svc, []string{"--password", "newpass"})
	if code != exitcode.BackendError || stderr != "error: failed to update profile\n" {
		t.Errorf("expected update failure, got %d %q", code, stderr)
	}
}

func TestShowCommand(t *testing.T) {
	svc := seeded()

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"4"})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "id:          4\n" +
		"title:       Plan week\n" +
		"deadline:    2024-05-01\n" +
		"quadrant:    Q2\n" +
		"important:   true\n" +
		"completed:   false\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	_, stderr, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"42"})
	if code != exitcode.UserError || stderr != "error: task not found: 42\n" {
		t.Errorf("expected not found, got %d %q", code, stderr)
	}

	padded, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"004"})
	if code != exitcode.Success || padded != expected {
		t.Errorf("expected zero-padded id to find task 4, got %d %q", code, padded)
	}
}
