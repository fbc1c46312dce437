package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"quadtask/internal/account"
	"quadtask/internal/config"
	"quadtask/internal/exitcode"
	"quadtask/internal/output"
	"quadtask/internal/service"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command.
// Without flags it shows the current user; with flags it updates it.
type ProfileCmd struct {
	nickname optionalString
	password optionalString
	format   string
}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return []string{"me"} }
func (c *ProfileCmd) Synopsis() string  { return "Show or update the current user" }
func (c *ProfileCmd) Usage() string {
	return "quadtask profile [--nickname <name>] [--password <password>] [--format text|json|yaml]"
}
func (c *ProfileCmd) NeedsAuth() bool { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	c.nickname, c.password = optionalString{}, optionalString{}
	fs.Var(&c.nickname, "nickname", "")
	fs.Var(&c.nickname, "n", "")
	fs.Var(&c.password, "password", "")
	fs.Var(&c.password, "p", "")
	fs.StringVar(&c.format, "format", "", "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if c.nickname.set || c.password.set {
		return c.update(ctx, cfg, svc, out, errOut)
	}

	user, err := account.LoadProfile(ctx, svc)
	if err != nil {
		cfg.Log().Warn("profile load failed", "err", err)
		fmt.Fprintf(errOut, "error: %v\n", account.ErrProfileLoadFailed)
		return exitFor(err)
	}
	if format != output.Text {
		if err := output.Encode(out, format, user); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	output.FormatProfile(out, user)
	return exitcode.Success
}

func (c *ProfileCmd) update(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	err := account.SaveProfile(ctx, svc, account.ProfileForm{
		Nickname: c.nickname.value,
		Password: c.password.value,
	})
	if err != nil {
		if errors.Is(err, account.ErrProfileUpdateFailed) {
			cfg.Log().Warn("profile update failed", "err", err)
			fmt.Fprintf(errOut, "error: %v\n", account.ErrProfileUpdateFailed)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
