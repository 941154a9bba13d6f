package kwess

import (
	"errors"
	"fmt"
	"log/slog"
	"os/user"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kaiyoux/kwess/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// ServerType selects which authorization server issues tokens.
type ServerType string

const (
	ServerTypeLive ServerType = "live"
	ServerTypeTest ServerType = "test"
)

// TokenStorageType represents the storage backends for the rotating refresh
// token (and the manually issued bootstrap token that seeds it).
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat        = LogFormatText
	DefaultConfigServerType       = ServerTypeLive
	DefaultConfigStorage          = TokenStorageTypeFile
	DefaultConfigRefreshTokenFile = "refreshToken"
	DefaultConfigCredentialFile   = "accessToken.json"
	DefaultConfigTimeout          = 15 * time.Second
)

// authServerURLs maps the server type to the token-exchange endpoint.
var authServerURLs = map[ServerType]string{
	ServerTypeLive: "https://login.questrade.com/oauth2/token",
	ServerTypeTest: "https://practicelogin.questrade.com/oauth2/token",
}

// StorageConfig describes where the refresh token lives between runs.
// Fields other than Type are mutually exclusive based on the storage type.
type StorageConfig struct {
	Type TokenStorageType `json:"type" validate:"required,oneof=file env keyring"`

	File        string `json:"file,omitempty"`         // For file storage: path to token file
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// newStore creates the refresh-token store for the configured backend.
func (s *StorageConfig) newStore() (tokenstore.TokenStore, error) {
	switch s.Type {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(s.File)
	case TokenStorageTypeEnv:
		return tokenstore.NewEnvStore(s.EnvKey)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore("kwess-refresh-token", s.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}

// Config holds the client's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level `json:"log_level"`
	LogFormat LogFormat  `json:"log_format" validate:"oneof=text json"`

	// ServerType selects the live or practice authorization server.
	ServerType ServerType `json:"server_type" validate:"required,oneof=live test"`

	// AuthURL overrides the token-exchange endpoint derived from ServerType.
	// Mainly useful against gateway sandboxes and in tests.
	AuthURL string `json:"auth_url,omitempty" validate:"omitempty,url"`

	// CredentialFile is where the full credential record (including the
	// computed expiry date) is cached between runs.
	CredentialFile string `json:"credential_file"`

	// Storage describes where the rotating refresh token is kept. With env
	// storage the rotated token cannot be written back, so every cold start
	// needs a freshly minted bootstrap token; file or keyring storage keeps
	// the chain alive indefinitely.
	Storage StorageConfig `json:"storage"`

	// Timeout bounds each HTTP call. A negative value disables the timeout
	// and blocks until the server responds.
	Timeout time.Duration `json:"timeout"`

	// GMT renders query timestamps in UTC instead of local time.
	GMT bool `json:"gmt"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with documented defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.ServerType == "" {
		c.ServerType = DefaultConfigServerType
	}
	if c.CredentialFile == "" {
		c.CredentialFile = DefaultConfigCredentialFile
	}
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultConfigStorage
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultConfigTimeout
	}

	// Dynamic defaults based on storage type
	switch c.Storage.Type {
	case TokenStorageTypeFile:
		if c.Storage.File == "" {
			c.Storage.File = DefaultConfigRefreshTokenFile
		}
	case TokenStorageTypeKeyring:
		if c.Storage.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("storage.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Storage.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeEnv:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Storage.Type {
	case TokenStorageTypeFile:
		if c.Storage.File == "" {
			return errors.New("file path required for file storage")
		}
	case TokenStorageTypeEnv:
		if c.Storage.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case TokenStorageTypeKeyring:
		if c.Storage.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}

// authURL resolves the token-exchange endpoint.
func (c *Config) authURL() string {
	if c.AuthURL != "" {
		return c.AuthURL
	}
	return authServerURLs[c.ServerType]
}

// httpTimeout translates the configured timeout for http.Client, where zero
// means no timeout.
func (c *Config) httpTimeout() time.Duration {
	if c.Timeout < 0 {
		return 0
	}
	return c.Timeout
}
