package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/mistgo/internal/app"
	"github.com/florianilch/mistgo/internal/ui"
)

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "account password (prompted for when omitted on a terminal)",
		Sources: cli.EnvVars("MISTGO_PASSWORD"),
	}
}

func loginCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "log in with a username or email",
		ArgsUsage: "<username-or-email>",
		Flags:     []cli.Flag{passwordFlag()},
		Action: env.onPage(pageLogin, func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			if cmd.Args().Len() != 1 {
				return errors.New("usage: mistgo login <username-or-email>")
			}
			identifier := cmd.Args().First()

			password, err := env.password(cmd)
			if err != nil {
				return err
			}

			err = a.WithSpinner(func() error {
				_, err := a.Client().Login(ctx, identifier, password)
				return err
			})
			if err != nil {
				return err
			}
			return reportSession(ctx, a, "Logged in as "+identifier)
		}),
	}
}

func registerCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "create an account",
		ArgsUsage: "<username> <email>",
		Flags:     []cli.Flag{passwordFlag()},
		Action: env.onPage(pageRegister, func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			if cmd.Args().Len() != 2 {
				return errors.New("usage: mistgo register <username> <email>")
			}
			username, email := cmd.Args().Get(0), cmd.Args().Get(1)

			password, err := env.password(cmd)
			if err != nil {
				return err
			}

			err = a.WithSpinner(func() error {
				_, err := a.Client().Register(ctx, username, email, password)
				return err
			})
			if err != nil {
				return err
			}
			return reportSession(ctx, a, "Registered as "+username)
		}),
	}
}

func logoutCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored session",
		Action: env.onPage(pageProfile, func(ctx context.Context, _ *cli.Command, a *app.App) error {
			if err := a.Client().Logout(ctx); err != nil {
				return err
			}
			a.UI().ShowAlert("Logged out", ui.SeveritySuccess)
			return nil
		}),
	}
}

func whoamiCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the cached identity of the logged-in user",
		Action: env.onPage(pageProfile, func(ctx context.Context, cmd *cli.Command, a *app.App) error {
			if err := requireSession(ctx, a); err != nil {
				return err
			}

			user, err := a.Session().User(ctx)
			if err != nil {
				return err
			}
			if user == nil {
				_, err = fmt.Fprintln(env.stdout, "logged in (identity unknown)")
				return err
			}
			_, err = fmt.Fprintf(env.stdout, "username: %s\nemail:    %s\n", user.Username, user.Email)
			return err
		}),
	}
}

// reportSession tells the user whether the auth call left them logged in.
func reportSession(ctx context.Context, a *app.App, success string) error {
	if a.Session().IsAuthenticated(ctx) {
		a.UI().ShowAlert(success, ui.SeveritySuccess)
		return nil
	}
	a.UI().ShowAlert("The server accepted the request but issued no token", ui.SeverityWarning)
	return nil
}

// password returns the --password value, prompting for it on an interactive terminal.
func (e *environment) password(cmd *cli.Command) (string, error) {
	if cmd.IsSet("password") {
		return cmd.String("password"), nil
	}

	fd := int(e.stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required: pass --password or run on a terminal")
	}

	_, _ = fmt.Fprint(e.stderr, "Password: ")
	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(e.stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
