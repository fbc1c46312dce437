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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	opts listOptions
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "quadtask list [--filter all|Q1|Q2|Q3|Q4] [--format text|json|yaml]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	registerListFlags(fs, &c.opts)
}

// registerListFlags adds --filter and --format.
func registerListFlags(fs *flag.FlagSet, opts *listOptions) {
	fs.StringVar(&opts.filter, "filter", "", "")
	fs.StringVar(&opts.filter, "f", "", "")
	fs.StringVar(&opts.format, "format", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	filter, format, err := c.opts.resolve(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b := openBoard(cfg, svc, errOut, filter, false)
	// Load failures are reported through the logger only.
	if err := b.Load(ctx, filter); err != nil {
		return exitFor(err)
	}
	if err := printView(out, cfg, b.View, format); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
