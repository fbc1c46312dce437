package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
)

func init() {
	Register(NewDoneCmd(true))
	Register(NewDoneCmd(false))
}

// DoneCmd implements the done and undo commands.
type DoneCmd struct {
	completed bool
	opts      listOptions
}

// NewDoneCmd returns done when completed is true, undo otherwise.
func NewDoneCmd(completed bool) *DoneCmd {
	return &DoneCmd{completed: completed}
}

func (c *DoneCmd) Name() string {
	if c.completed {
		return "done"
	}
	return "undo"
}

func (c *DoneCmd) Aliases() []string { return nil }

func (c *DoneCmd) Synopsis() string {
	if c.completed {
		return "Mark a task completed"
	}
	return "Mark a task not completed"
}

func (c *DoneCmd) Usage() string   { return "quadtask " + c.Name() + " <id>" }
func (c *DoneCmd) NeedsAuth() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	registerListFlags(fs, &c.opts)
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	filter, format, err := c.opts.resolve(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b := openBoard(cfg, svc, errOut, filter, false)
	err = b.Toggle(ctx, id, c.completed)
	return afterMutation(out, cfg, b, format, true, err)
}
