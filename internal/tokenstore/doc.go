// Package tokenstore provides persistent single-value storage for session data.
//
// Each Store holds one opaque string under one key. The session layer uses two
// of them: one for the bearer token and one for the cached user identity.
//
// Supports four storage backends with different security and deployment tradeoffs:
//   - File: Local filesystem storage with atomic writes and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//   - Env: Read-only environment variable access (requires external secret management)
//   - Memory: Process-scoped storage that disappears when the process exits
//
// Logging in requires writable storage (file, keyring or memory), while a
// pre-issued token can be supplied through read-only env storage.
package tokenstore
