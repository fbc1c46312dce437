package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
	"quadtask/internal/ui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the ui command.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"tui"} }
func (c *UICmd) Synopsis() string  { return "Open the interactive board" }
func (c *UICmd) Usage() string     { return "quadtask ui [common flags]" }
func (c *UICmd) NeedsAuth() bool   { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := ui.Run(ctx, cfg, svc); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		if errors.Is(err, ui.ErrNotTTY) {
			return exitcode.UserError
		}
		return exitcode.BackendError
	}
	return exitcode.Success
}
