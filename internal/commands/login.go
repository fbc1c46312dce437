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
	"quadtask/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the session token" }
func (c *LoginCmd) Usage() string     { return "quadtask login --email <email> --password <password>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	err := account.Login(ctx, svc, cfg, account.Credentials{Email: c.email, Password: c.password})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrMissingCredentials), errors.Is(err, service.ErrInvalidCredentials):
			fmt.Fprintf(errOut, "error: %v\n", err)
		default:
			fmt.Fprintf(errOut, "error: login failed: %v\n", err)
		}
		return exitFor(err)
	}
	cfg.Log().Debug("token stored", "path", cfg.TokenPath())

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	nickname string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "quadtask register --nickname <name> --email <email> --password <password>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.nickname, "nickname", "", "")
	fs.StringVar(&c.nickname, "n", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := account.Register(ctx, svc, account.RegistrationForm{
		Nickname: c.nickname,
		Email:    c.email,
		Password: c.password,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitFor(err)
	}
	cfg.Log().Debug("registered", "id", user.ID, "email", user.Email)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok (now run: quadtask login)")
	}
	return exitcode.Success
}
