package tokenstore

import "context"

// TokenStore reads and writes the current refresh token.
//
// Keeping the refresh chain alive across restarts requires writable storage;
// a read-only backend still works but forfeits the rotated token on exit.
type TokenStore interface {
	// Read returns the stored token. Returns error if token is missing or empty.
	Read(ctx context.Context) (string, error)

	// Write replaces the stored token. Returns error if the backend is
	// read-only (e.g., environment variables) or if the write fails.
	Write(ctx context.Context, token string) error
}
