// Package nav abstracts client navigation: the page the user is on and where
// the client sends them when their session is missing or rejected.
package nav

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Well-known page paths.
const (
	RootPath     = "/"
	IndexPath    = "/index.html"
	RegisterPath = "/register.html"
)

// publicPages are reachable without an active session.
var publicPages = []string{RootPath, IndexPath, RegisterPath}

// IsPublic reports whether path is reachable without an active session.
func IsPublic(path string) bool {
	return slices.Contains(publicPages, path)
}

// Navigator exposes the current page and moves the client to another one.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// Authenticator reports whether the client holds a session.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// CheckAuth sends unauthenticated clients on non-public pages back to the root page.
// Returns true if a redirect happened.
func CheckAuth(ctx context.Context, auth Authenticator, n Navigator) bool {
	current := n.CurrentPath()
	if auth.IsAuthenticated(ctx) || IsPublic(current) {
		return false
	}

	slog.DebugContext(ctx, "no session, redirecting", "from", current, "to", RootPath)
	n.Navigate(RootPath)
	return true
}

// Location is an in-memory Navigator. Safe for concurrent use.
type Location struct {
	mu         sync.Mutex
	path       string
	onNavigate func(from, to string)
}

// Compile-time check to ensure Location implements Navigator
var _ Navigator = (*Location)(nil)

// LocationOption configures a Location.
type LocationOption func(*Location)

// WithOnNavigate registers a hook called after every navigation.
func WithOnNavigate(fn func(from, to string)) LocationOption {
	return func(l *Location) {
		l.onNavigate = fn
	}
}

// NewLocation creates a Location starting at path.
func NewLocation(path string, opts ...LocationOption) *Location {
	l := &Location{path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CurrentPath returns the page the client is on.
func (l *Location) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Navigate moves the client to path and calls the navigation hook.
func (l *Location) Navigate(path string) {
	l.mu.Lock()
	from := l.path
	l.path = path
	hook := l.onNavigate
	l.mu.Unlock()

	if hook != nil {
		hook(from, path)
	}
}
