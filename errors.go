package kwess

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned by FindAccountNumber when no cached account
// matches the requested type.
var ErrAccountNotFound = errors.New("account not found")

// ConfigError reports that the bootstrap secret could not be read. There is no
// way to proceed without manual intervention: the operator must log into the
// brokerage, mint a new authorization token, and store it where Source points.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bootstrap token unavailable from %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AuthExchangeError reports a non-success status from the authorization
// server's token exchange. The presented token is consumed by the attempt and
// cannot be retried.
type AuthExchangeError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("authorization server returned %d for %s", e.StatusCode, e.URL)
}

// APIError reports a non-success status from a resource API endpoint. The
// response body is carried verbatim to aid diagnosis.
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api server returned %d for %s", e.StatusCode, e.URL)
}

// PersistenceError reports a failed write of the full credential record.
// Without that file the next process start cannot detect token liveness, so
// callers treat this as fatal.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting credentials to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
