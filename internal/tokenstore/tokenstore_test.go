package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

// exerciseStore runs the read/write/delete contract shared by all writable backends.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() on empty store error = %v, want ErrNotFound", err)
	}

	if err := store.Write(ctx, "t1"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "t1" {
		t.Errorf("Read() = %q, want %q", got, "t1")
	}

	if err := store.Write(ctx, `{"username":"alice","email":"alice"}`); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}
	got, err = store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() after overwrite error = %v", err)
	}
	if got != `{"username":"alice","email":"alice"}` {
		t.Errorf("Read() after overwrite = %q", got)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "mistgo_token"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	exerciseStore(t, store)
}

func TestFileStorePermissions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mistgo_token")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Write(ctx, "secret"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %04o, want 0600", perm)
	}

	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	if _, err := store.Read(ctx); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Read() with 0644 permissions error = %v, want insecure permissions error", err)
	}
}

func TestNewFileStoreEmptyPath(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") error = nil, want error")
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("mistgo_token", "alice")
	if err != nil {
		t.Fatalf("NewKeyringStore() error = %v", err)
	}
	exerciseStore(t, store)
}

func TestNewKeyringStoreValidation(t *testing.T) {
	tests := []struct {
		name    string
		service string
		user    string
	}{
		{name: "empty service", service: "", user: "alice"},
		{name: "empty user", service: "mistgo_token", user: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewKeyringStore(tt.service, tt.user); err == nil {
				t.Error("NewKeyringStore() error = nil, want error")
			}
		})
	}
}

func TestEnvStore(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MISTGO_TEST_TOKEN", "from-env")

	store, err := NewEnvStore("MISTGO_TEST_TOKEN")
	if err != nil {
		t.Fatalf("NewEnvStore() error = %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("Read() = %q, want %q", got, "from-env")
	}

	if err := store.Write(ctx, "other"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write() error = %v, want ErrReadOnly", err)
	}
	if err := store.Delete(ctx); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete() error = %v, want ErrReadOnly", err)
	}
}

func TestEnvStoreUnset(t *testing.T) {
	store, err := NewEnvStore("MISTGO_TEST_UNSET_TOKEN")
	if err != nil {
		t.Fatalf("NewEnvStore() error = %v", err)
	}
	if _, err := store.Read(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestOverlayStore(t *testing.T) {
	exerciseStore(t, NewOverlayStore(NewMemoryStore()))
}

func TestOverlayStoreMasksEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MISTGO_TEST_TOKEN", "from-env")

	env, err := NewEnvStore("MISTGO_TEST_TOKEN")
	if err != nil {
		t.Fatalf("NewEnvStore() error = %v", err)
	}
	store := NewOverlayStore(env)

	if got, err := store.Read(ctx); err != nil || got != "from-env" {
		t.Fatalf("Read() = %q, %v; want the environment value", got, err)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() after Delete error = %v, want ErrNotFound", err)
	}
	if got, _ := env.Read(ctx); got != "from-env" {
		t.Errorf("environment value = %q, want it untouched", got)
	}

	if err := store.Write(ctx, "fresh"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, err := store.Read(ctx); err != nil || got != "fresh" {
		t.Errorf("Read() after Write = %q, %v; want %q", got, err, "fresh")
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	if err := store.Write(ctx, "t1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want context.Canceled", err)
	}
	if _, err := store.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}
