package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	opts        listOptions
	title       optionalString
	description optionalString
	deadline    optionalString
	important   optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "quadtask edit [--title <text>] [--description <text>] [--deadline <YYYY-MM-DD>] [--important true|false] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.deadline, c.important = optionalString{}, optionalString{}, optionalString{}, optionalString{}
	registerListFlags(fs, &c.opts)
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.deadline, "deadline", "")
	fs.Var(&c.important, "important", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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
	if !c.title.set && !c.description.set && !c.deadline.set && !c.important.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	var important bool
	if c.important.set {
		if important, err = strconv.ParseBool(c.important.value); err != nil {
			fmt.Fprintf(errOut, "error: invalid value for --important: %s\n", c.important.value)
			return exitcode.UserError
		}
	}

	b := openBoard(cfg, svc, errOut, filter, false)
	task, err := findTask(ctx, b, id)
	if err != nil {
		if b.State.LastError != nil {
			return exitFor(err)
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	form := b.OpenEdit(task)
	if c.title.set {
		form.Title = c.title.value
	}
	if c.description.set {
		form.Description = c.description.value
	}
	if c.deadline.set {
		form.Deadline = c.deadline.value
	}
	if c.important.set {
		form.Important = important
	}

	b.State.Filter = filter
	err = b.Save(ctx, form)
	return afterMutation(out, cfg, b, format, err == nil, err)
}
