package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/florianilch/mistgo/internal/api"
	"github.com/florianilch/mistgo/internal/nav"
	"github.com/florianilch/mistgo/internal/session"
	"github.com/florianilch/mistgo/internal/ui"
)

// Option configures an App.
type Option func(*options)

type options struct {
	output io.Writer
}

// WithOutput sets where alerts and the spinner are drawn. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// App wires the session store, API client and presentation helpers for one page.
type App struct {
	cfg      *Config
	session  *session.Session
	location *nav.Location
	client   *api.Client
	ui       *ui.Helpers
}

// New creates an App positioned on page.
func New(cfg *Config, page string, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{output: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	// I/O deferred to first session read
	tokens, users, err := cfg.Session.NewStores()
	if err != nil {
		return nil, fmt.Errorf("failed to create session stores: %w", err)
	}
	sess, err := session.New(tokens, users)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	location := nav.NewLocation(page)

	client, err := api.New(cfg.API.BaseURL, sess,
		api.WithNavigator(location),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	doc := ui.NewDocument()
	ui.NewTerminalRenderer(o.output, cfg.UI.Color).Attach(doc)

	return &App{
		cfg:      cfg,
		session:  sess,
		location: location,
		client:   client,
		ui:       ui.NewHelpers(doc, ui.WithAlertTimeout(cfg.UI.AlertTimeout)),
	}, nil
}

// Session returns the session store.
func (a *App) Session() *session.Session {
	return a.session
}

// Client returns the API client.
func (a *App) Client() *api.Client {
	return a.client
}

// UI returns the presentation helpers.
func (a *App) UI() *ui.Helpers {
	return a.ui
}

// Location returns the current page.
func (a *App) Location() nav.Navigator {
	return a.location
}

// CheckAuth redirects to the root page when there is no session and the
// current page is not public. Returns true if a redirect happened.
func (a *App) CheckAuth(ctx context.Context) bool {
	return nav.CheckAuth(ctx, a.session, a.location)
}

// WithSpinner shows the spinner while fn runs.
func (a *App) WithSpinner(fn func() error) error {
	a.ui.ShowSpinner()
	defer a.ui.HideSpinner()
	return fn()
}

// Present shows err as an error alert and returns it unchanged.
func (a *App) Present(err error) error {
	if err != nil {
		a.ui.ShowAlert(err.Error(), ui.SeverityError)
	}
	return err
}
