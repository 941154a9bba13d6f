// Package tokenstore persists the brokerage refresh token between runs.
//
// The refresh token is single-use: every exchange consumes the stored value
// and yields a replacement, so the store is rewritten on every successful
// refresh. The same location holds the manually issued bootstrap token that
// seeds the chain after the operator logs into the brokerage's developer
// portal.
//
// Three backends are supported:
//   - File: local filesystem, atomic writes, owner-only permissions
//   - Env: read-only environment variable (the rotated token is lost on exit,
//     so every cold start needs a fresh bootstrap token)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
package tokenstore
