package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/florianilch/mistgo/internal/api"
	"github.com/florianilch/mistgo/internal/nav"
)

func newTestApp(t *testing.T, baseURL, page string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	cfg.API.BaseURL = baseURL
	cfg.Session.Storage = SessionStorageTypeMemory
	cfg.UI.Color = "never"

	var out bytes.Buffer
	a, err := New(cfg, page, WithOutput(&out))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a, &out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	cfg.API.BaseURL = ""

	if _, err := New(cfg, nav.RootPath); err == nil {
		t.Error("New() error = nil, want invalid configuration")
	}
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, api.DefaultBaseURL, "/items.html")

	if !a.CheckAuth(ctx) {
		t.Fatal("CheckAuth() = false without a session")
	}
	if a.Location().CurrentPath() != nav.RootPath {
		t.Errorf("CurrentPath() = %q, want /", a.Location().CurrentPath())
	}
}

func TestLoginThenUnauthorized(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login":
			_, _ = io.WriteString(w, `{"token":"t1"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Token expired"}`)
		}
	}))
	defer server.Close()

	a, out := newTestApp(t, server.URL, "/items.html")

	if _, err := a.Client().Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !a.Session().IsAuthenticated(ctx) {
		t.Fatal("IsAuthenticated() = false after login")
	}

	err := a.WithSpinner(func() error {
		_, err := a.Client().ListItems(ctx)
		return err
	})
	if !api.IsUnauthorized(err) {
		t.Fatalf("ListItems() error = %v, want unauthorized", err)
	}
	if a.Session().IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after 401")
	}
	if a.Location().CurrentPath() != nav.RootPath {
		t.Errorf("CurrentPath() = %q, want /", a.Location().CurrentPath())
	}

	if !errors.Is(a.Present(err), err) {
		t.Error("Present() did not return the error unchanged")
	}
	if !strings.Contains(out.String(), "Token expired") {
		t.Errorf("output = %q, want the server message", out.String())
	}
}

func TestUnauthorizedEndsEnvSession(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MISTGO_TEST_APP_TOKEN", "stale")

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
	}))
	defer server.Close()

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	cfg.API.BaseURL = server.URL
	cfg.Session.Storage = SessionStorageTypeEnv
	cfg.Session.EnvKey = "MISTGO_TEST_APP_TOKEN"
	cfg.UI.Color = "never"

	a, err := New(cfg, "/items.html", WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !a.Session().IsAuthenticated(ctx) {
		t.Fatal("IsAuthenticated() = false with the token in the environment")
	}

	if _, err := a.Client().ListItems(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("ListItems() error = %v, want unauthorized", err)
	}
	if a.Session().IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after 401")
	}

	// Back on a protected page the rejected token must not be reused.
	a.Location().Navigate("/items.html")
	if !a.CheckAuth(ctx) {
		t.Error("CheckAuth() = false, want redirect after 401")
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}
