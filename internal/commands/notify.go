package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"quadtask/internal/account"
	"quadtask/internal/board"
	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
)

// notifier reports board failures on stderr and asks confirmations on stdin.
type notifier struct {
	errOut    io.Writer
	in        io.Reader
	assumeYes bool
}

func newNotifier(cfg *config.Config, errOut io.Writer, assumeYes bool) *notifier {
	return &notifier{errOut: errOut, in: cfg.Stdin, assumeYes: assumeYes}
}

// Alert prints msg as an error line. Multi-line messages keep their layout.
func (n *notifier) Alert(msg string) {
	fmt.Fprintf(n.errOut, "error: %s\n", msg)
}

// Confirm prompts on stderr and reads a y/N answer.
// Without a reader the answer is no.
func (n *notifier) Confirm(prompt string) bool {
	if n.assumeYes {
		return true
	}
	if n.in == nil {
		return false
	}
	fmt.Fprintf(n.errOut, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(n.in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(n.errOut)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// exitFor maps an error to the exit code it deserves.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, board.ErrRejected),
		errors.Is(err, board.ErrDeclined),
		errors.Is(err, account.ErrMissingCredentials),
		errors.Is(err, account.ErrMissingFields),
		errors.Is(err, account.ErrNothingToUpdate):
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, config.ErrNoToken):
		return exitcode.AuthError
	default:
		return exitcode.BackendError
	}
}
