package kwess

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kaiyoux/kwess/internal/tokenstore"
)

// credState tracks the credential lifecycle during construction. The cascade
// from cached credentials down to a fresh bootstrap exchange is driven by
// explicit states rather than error fallthrough so each transition is
// observable and testable.
type credState int

const (
	stateNoCredential credState = iota
	stateCachedLive
	stateCachedExpired
	stateAuthenticated
	stateFailed
)

func (s credState) String() string {
	switch s {
	case stateNoCredential:
		return "no_credential"
	case stateCachedLive:
		return "cached_live"
	case stateCachedExpired:
		return "cached_expired"
	case stateAuthenticated:
		return "authenticated"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseTransport http.RoundTripper
}

// WithTransport sets a custom base transport for all HTTP requests, both the
// token exchange and resource calls. If not provided, http.DefaultTransport
// is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.baseTransport = transport
	}
}

// Client is an authenticated session against the brokerage's REST API.
//
// It owns the full token lifecycle: on construction it restores the cached
// credential record if still live, otherwise exchanges the stored refresh (or
// bootstrap) token for a fresh access/refresh pair, persisting both. Resource
// calls attach the current access token through oauth2.Transport; an expired
// access token is re-exchanged transparently on the next call.
//
// A Client is safe for concurrent use. The credential record is replaced
// atomically under a mutex on every successful refresh.
type Client struct {
	cfg   *Config
	store tokenstore.TokenStore

	// authClient talks to the authorization server, unauthenticated.
	authClient *http.Client
	// apiClient talks to the resource API with oauth2.Transport attaching
	// the Authorization header from Token.
	apiClient *http.Client

	mu       sync.Mutex
	creds    *Credentials
	state    credState
	userID   int
	accounts []Account
}

// Compile-time check to ensure Client implements oauth2.TokenSource
var _ oauth2.TokenSource = (*Client)(nil)

// New creates a Client and authenticates it.
//
// Construction first tries the persisted credential record: if its expiry is
// still in the future, the cached access token is confirmed with one accounts
// fetch (which also primes the account cache). If there is no usable record,
// or the server no longer honors it, the token held by the configured store
// is exchanged for a new credential pair. A store that cannot be read yields
// a *ConfigError: the operator must mint a new bootstrap token manually.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &clientOptions{baseTransport: http.DefaultTransport}
	for _, opt := range opts {
		opt(o)
	}

	store, err := cfg.Storage.newStore()
	if err != nil {
		return nil, fmt.Errorf("creating token store: %w", err)
	}

	c := &Client{
		cfg:   cfg,
		store: store,
		state: stateNoCredential,
		authClient: &http.Client{
			Timeout:   cfg.httpTimeout(),
			Transport: o.baseTransport,
		},
	}
	c.apiClient = &http.Client{
		Timeout: cfg.httpTimeout(),
		Transport: &oauth2.Transport{
			Source: c,
			Base:   o.baseTransport,
		},
	}

	if err := c.authenticate(ctx); err != nil {
		c.mu.Lock()
		c.state = stateFailed
		c.mu.Unlock()
		return nil, err
	}
	return c, nil
}

// authenticate walks the credential state machine until the client holds a
// live access token and a primed account cache.
func (c *Client) authenticate(ctx context.Context) error {
	state := stateNoCredential

	cached, err := loadCredentials(c.cfg.CredentialFile)
	switch {
	case err != nil:
		slog.DebugContext(ctx, "no cached credentials", "file", c.cfg.CredentialFile, "error", err)
	case cached.Live(time.Now()):
		state = stateCachedLive
	default:
		state = stateCachedExpired
		slog.InfoContext(ctx, "cached access token expired", "expiry", cached.ExpiryDate.Format(expiryLayout))
	}

	if state == stateCachedLive {
		c.mu.Lock()
		c.creds = cached
		c.mu.Unlock()

		// Liveness probe: one accounts fetch confirms the server still
		// honors the token and refreshes the account cache as a side
		// effect. Any failure falls through to a full re-exchange.
		if err := c.fetchAccounts(ctx); err != nil {
			slog.WarnContext(ctx, "cached access token rejected, re-authenticating", "error", err)
			c.mu.Lock()
			c.creds = nil
			c.mu.Unlock()
			state = stateCachedExpired
		} else {
			state = stateAuthenticated
		}
	}

	if state != stateAuthenticated {
		token, err := c.store.Read(ctx)
		if err != nil {
			return &ConfigError{Source: c.storeSource(), Err: err}
		}
		// The bootstrap token leaves scope here; after a successful
		// exchange only the rotated refresh token is retained.
		if err := c.Refresh(ctx, token); err != nil {
			return err
		}
		if err := c.fetchAccounts(ctx); err != nil {
			return fmt.Errorf("fetching accounts after token exchange: %w", err)
		}
		state = stateAuthenticated
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	slog.DebugContext(ctx, "authenticated", "state", state.String())
	return nil
}

// storeSource names the refresh-token location for error messages.
func (c *Client) storeSource() string {
	switch c.cfg.Storage.Type {
	case TokenStorageTypeFile:
		return fmt.Sprintf("file %s", c.cfg.Storage.File)
	case TokenStorageTypeEnv:
		return fmt.Sprintf("environment variable %s", c.cfg.Storage.EnvKey)
	case TokenStorageTypeKeyring:
		return fmt.Sprintf("keyring entry for %s", c.cfg.Storage.KeyringUser)
	default:
		return string(c.cfg.Storage.Type)
	}
}

// Token implements oauth2.TokenSource. It returns the current access token,
// transparently exchanging the refresh token first if the access token has
// expired. oauth2.Transport calls this before every resource request.
func (c *Client) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds == nil {
		return nil, fmt.Errorf("no credentials held; client not authenticated")
	}
	if c.creds.Live(time.Now()) {
		return c.creds.oauthToken(), nil
	}

	// oauth2.TokenSource has no context parameter (legacy interface), so the
	// refresh triggered here runs on the background context.
	if err := c.refreshLocked(context.Background(), c.creds.RefreshToken); err != nil {
		return nil, err
	}
	return c.creds.oauthToken(), nil
}

// Refresh exchanges token (a stored refresh token or a freshly minted
// bootstrap token) for a new credential record and persists it.
//
// The presented token is consumed by the attempt even on failure; a second
// call with the same token fails because the authorization server has already
// invalidated it.
func (c *Client) Refresh(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx, token)
}

// refreshLocked performs the token exchange and the two persistence writes.
// Callers must hold c.mu. The stored credential record is only replaced on
// success.
func (c *Client) refreshLocked(ctx context.Context, token string) error {
	creds, err := c.exchange(ctx, token)
	if err != nil {
		return err
	}

	// The rotated refresh token seeds the next exchange; losing this write
	// only costs the next cold start, so it is logged rather than surfaced.
	if err := c.store.Write(ctx, creds.RefreshToken); err != nil {
		slog.WarnContext(ctx, "could not save rotated refresh token", "store", c.storeSource(), "error", err)
	}

	// The full record is what makes liveness detectable on the next start;
	// failing to write it is fatal.
	if err := creds.save(c.cfg.CredentialFile); err != nil {
		return &PersistenceError{Path: c.cfg.CredentialFile, Err: err}
	}

	c.creds = creds
	slog.InfoContext(ctx, "exchanged refresh token",
		"access_token_lifetime", time.Duration(creds.ExpiresIn)*time.Second,
		"expiry", creds.ExpiryDate.Format(expiryLayout))
	return nil
}

// exchange sends the token-exchange request. The authorization server takes
// the grant as a GET with query parameters rather than a form POST; that is
// its contract, not a choice made here.
func (c *Client) exchange(ctx context.Context, token string) (*Credentials, error) {
	endpoint := c.cfg.authURL()
	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	q.Set("refresh_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building token exchange request: %w", err)
	}

	resp, err := c.authClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange against %s server: %w", c.cfg.ServerType, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token exchange response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The query string is omitted so the consumed token never reaches
		// logs through the error.
		return nil, &AuthExchangeError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, fmt.Errorf("parsing token exchange response: %w", err)
	}
	creds.setExpiry(time.Now())
	creds.normalize()
	return &creds, nil
}

// apiServer returns the base URL for resource calls from the current record.
func (c *Client) apiServer() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.creds == nil {
		return "", fmt.Errorf("no credentials held; client not authenticated")
	}
	return c.creds.APIServer, nil
}

// get performs one authenticated GET against the resource API and returns the
// raw response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, path, query, nil)
}

// post performs one authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.call(ctx, http.MethodPost, path, nil, body)
}

// call is the single authenticated-HTTP helper behind every endpoint method.
// The Authorization header is attached by oauth2.Transport from Token.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body []byte) (json.RawMessage, error) {
	base, err := c.apiServer()
	if err != nil {
		return nil, err
	}

	callURL := base + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		callURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, callURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	slog.DebugContext(ctx, "api request", "request_id", requestID, "method", method, "url", callURL)

	resp, err := c.apiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", callURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", callURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			URL:        callURL,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	slog.DebugContext(ctx, "api response", "request_id", requestID, "status", resp.StatusCode, "bytes", len(respBody))
	return respBody, nil
}
