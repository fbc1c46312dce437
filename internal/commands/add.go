package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	opts        listOptions
	description string
	deadline    string
	important   bool
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "quadtask add --deadline <YYYY-MM-DD> [--description <text>] [--important] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	registerListFlags(fs, &c.opts)
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.deadline, "deadline", "", "")
	fs.BoolVar(&c.important, "important", false, "")
	fs.BoolVar(&c.important, "i", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	filter, format, err := c.opts.resolve(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b := openBoard(cfg, svc, errOut, filter, false)
	form := b.OpenCreate()
	form.Title = strings.Join(args, " ")
	form.Description = c.description
	form.Deadline = c.deadline
	form.Important = c.important

	err = b.Save(ctx, form)
	return afterMutation(out, cfg, b, format, err == nil, err)
}
