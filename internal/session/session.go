// Package session holds the client's authentication state: the opaque bearer
// token and the cached identity of the user it belongs to.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/florianilch/mistgo/internal/tokenstore"
)

// Storage keys for the two session entries.
const (
	TokenKey = "mistgo_token"
	UserKey  = "mistgo_user"
)

// ErrMalformedUser is wrapped by User when the stored identity cannot be decoded.
var ErrMalformedUser = errors.New("session: malformed stored user")

// User is the identity cached next to the token for display purposes.
// It is not authoritative and carries no permission data.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session reads and writes the token and user entries of the session store.
// Each entry is read and written independently; there is no cross-key locking.
type Session struct {
	tokens tokenstore.Store
	users  tokenstore.Store
}

// New creates a Session over the given token and user stores.
func New(tokens, users tokenstore.Store) (*Session, error) {
	if tokens == nil {
		return nil, fmt.Errorf("missing token store")
	}
	if users == nil {
		return nil, fmt.Errorf("missing user store")
	}

	return &Session{
		tokens: tokens,
		users:  users,
	}, nil
}

// NewInMemory creates a Session backed by process memory.
func NewInMemory() *Session {
	return &Session{
		tokens: tokenstore.NewMemoryStore(),
		users:  tokenstore.NewMemoryStore(),
	}
}

// SaveToken persists the bearer token.
func (s *Session) SaveToken(ctx context.Context, token string) error {
	if err := s.tokens.Write(ctx, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Token returns the stored token, or an empty string if none is stored.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.tokens.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// RemoveToken deletes the stored token.
func (s *Session) RemoveToken(ctx context.Context) error {
	if err := s.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// SaveUser persists the identity as JSON.
func (s *Session) SaveUser(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.users.Write(ctx, string(data)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// User returns the cached identity, or nil if none is stored.
// A stored value that is not valid JSON yields an error wrapping ErrMalformedUser.
func (s *Session) User(ctx context.Context) (*User, error) {
	data, err := s.users.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedUser, err)
	}
	return &user, nil
}

// RemoveUser deletes the cached identity.
func (s *Session) RemoveUser(ctx context.Context) error {
	if err := s.users.Delete(ctx); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is stored.
// Storage failures are logged and count as unauthenticated.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil {
		slog.WarnContext(ctx, "session token unreadable", "error", err)
		return false
	}
	return token != ""
}

// Clear removes both the token and the cached identity.
// Both removals are attempted even if the first one fails.
func (s *Session) Clear(ctx context.Context) error {
	return errors.Join(s.RemoveToken(ctx), s.RemoveUser(ctx))
}

// OAuth2Token returns the stored token as a bearer oauth2.Token, or nil if none is stored.
func (s *Session) OAuth2Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}
