package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/florianilch/mistgo/internal/nav"
	"github.com/florianilch/mistgo/internal/session"
)

// Credentials is the body of the login and register calls.
type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with a username or email. The identifier is sent in both
// fields and the server decides which one it matches. On a response carrying a
// token, the token and an identity echoing the identifier are stored.
func (c *Client) Login(ctx context.Context, identifier, password string) (*Response, error) {
	return c.authenticate(ctx, "/login", Credentials{
		Username: identifier,
		Email:    identifier,
		Password: password,
	})
}

// Register creates an account. On a response carrying a token, the token and
// the given identity are stored.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Response, error) {
	return c.authenticate(ctx, "/register", Credentials{
		Username: username,
		Email:    email,
		Password: password,
	})
}

// Logout clears the session and navigates to the root page. No request is sent.
func (c *Client) Logout(ctx context.Context) error {
	err := c.session.Clear(ctx)
	c.navigator.Navigate(nav.RootPath)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*Response, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("encoding credentials: %w", err)
	}

	resp, err := c.Request(ctx, path, RequestOptions{
		Method:   http.MethodPost,
		Body:     body,
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Token string `json:"token"`
	}
	if resp.Decode(&result) != nil || result.Token == "" {
		return resp, nil
	}

	if err := c.session.SaveToken(ctx, result.Token); err != nil {
		return resp, err
	}
	// Identity is echoed from the input, not read from the server.
	if err := c.session.SaveUser(ctx, session.User{Username: creds.Username, Email: creds.Email}); err != nil {
		// A token without its identity is not a usable session.
		return resp, errors.Join(err, c.session.RemoveToken(ctx))
	}

	slog.InfoContext(ctx, "session established", "username", creds.Username)
	return resp, nil
}
