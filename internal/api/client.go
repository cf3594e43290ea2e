package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/florianilch/mistgo/internal/nav"
	"github.com/florianilch/mistgo/internal/session"
)

// DefaultBaseURL is the production MistGo API.
const DefaultBaseURL = "https://mistgo-api-app-30879.azurewebsites.net"

const (
	defaultUserAgent = "mistgo/0.1"
	scopeName        = "github.com/florianilch/mistgo/internal/api"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient     *http.Client
	navigator      nav.Navigator
	userAgent      string
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
}

// WithHTTPClient sets the HTTP client used for requests.
// If not provided, http.DefaultClient is used.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpClient = c
	}
}

// WithNavigator sets where the client is sent after an unauthorized response.
// If not provided, the client is assumed to be on the public root page and is never redirected.
func WithNavigator(n nav.Navigator) Option {
	return func(cfg *clientConfig) {
		cfg.navigator = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) {
		cfg.userAgent = ua
	}
}

// WithTracerProvider sets the provider for request spans.
// If not provided, the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *clientConfig) {
		cfg.tracerProvider = tp
	}
}

// WithPropagator sets how trace context is written into request headers.
// If not provided, the global propagator is used.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(cfg *clientConfig) {
		cfg.propagator = p
	}
}

// Client issues authenticated requests against the MistGo API.
// Safe for concurrent use; concurrent requests are independent.
type Client struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
	navigator  nav.Navigator
	userAgent  string
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// New creates a Client for baseURL that reads and updates sess.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	if sess == nil {
		return nil, errors.New("missing session")
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cfg := &clientConfig{
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.navigator == nil {
		cfg.navigator = nav.NewLocation(nav.RootPath)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.propagator == nil {
		cfg.propagator = otel.GetTextMapPropagator()
	}

	return &Client{
		baseURL:    normalized,
		session:    sess,
		httpClient: cfg.httpClient,
		navigator:  cfg.navigator,
		userAgent:  cfg.userAgent,
		tracer:     cfg.tracerProvider.Tracer(scopeName),
		propagator: cfg.propagator,
	}, nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("base URL missing host")
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}
