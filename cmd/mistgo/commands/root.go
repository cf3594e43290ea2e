package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/mistgo/internal/app"
	"github.com/florianilch/mistgo/internal/nav"
	"github.com/florianilch/mistgo/internal/observability"
	"github.com/florianilch/mistgo/internal/ui"
)

// ErrReported wraps errors that were already shown to the user as an alert.
var ErrReported = errors.New("reported")

// Pages the commands act on. Public pages skip the authentication redirect.
const (
	pageLogin    = nav.IndexPath
	pageRegister = nav.RegisterPath
	pageItems    = "/items.html"
	pageProfile  = "/profile.html"
)

const loginHint = "Not logged in. Run `mistgo login` first."

// environment holds the process streams the commands read from and write to.
type environment struct {
	stdin   *os.File
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string
}

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	env := &environment{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		environ: os.Environ,
	}
	return newRootCommand(env).Run(ctx, args)
}

func newRootCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "mistgo",
		Usage:     "MistGo API client",
		Writer:    env.stdout,
		ErrWriter: env.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: mistgo/config.toml in the user config directory)",
				Sources: cli.EnvVars("MISTGO_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "api--base-url",
				Usage: "API base URL",
				Value: app.DefaultConfigAPIBaseURL,
			},
			&cli.StringFlag{
				Name:  "session--storage",
				Usage: "session storage (file|keyring|env|memory)",
				Value: string(app.DefaultConfigSessionStorage),
			},
			&cli.StringFlag{
				Name:  "session--dir",
				Usage: "directory for file session storage",
			},
			&cli.StringFlag{
				Name:  "ui--color",
				Usage: "colour alerts (auto|always|never)",
				Value: string(app.DefaultConfigUIColor),
			},
		},
		Commands: []*cli.Command{
			loginCommand(env),
			registerCommand(env),
			logoutCommand(env),
			whoamiCommand(env),
			itemsCommand(env),
		},
	}
}

// pageAction is the body of a command running on a page of the client.
type pageAction func(ctx context.Context, cmd *cli.Command, a *app.App) error

// onPage loads configuration, sets up logging and the App for page, then runs
// fn. Errors from fn are shown as an alert and returned wrapped in ErrReported.
func (e *environment) onPage(page string, fn pageAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(configPath(cmd), cmd, e.environ)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		shutdown, err := observability.Instrument(ctx, observability.Options{
			Level:    cfg.Level(),
			Format:   string(cfg.LogFormat),
			Output:   e.stderr,
			Exporter: cfg.Telemetry.Exporter,
			Endpoint: cfg.Telemetry.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()

		a, err := app.New(cfg, page, app.WithOutput(e.stderr))
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}

		if err := fn(ctx, cmd, a); err != nil {
			a.Present(err)
			if page != nav.RootPath && a.Location().CurrentPath() == nav.RootPath {
				a.UI().ShowAlert(loginHint, ui.SeverityInfo)
			}
			return fmt.Errorf("%w: %w", ErrReported, err)
		}
		return nil
	}
}

// requireSession redirects to the root page when there is no session.
func requireSession(ctx context.Context, a *app.App) error {
	if a.CheckAuth(ctx) {
		return errors.New("no active session")
	}
	return nil
}
