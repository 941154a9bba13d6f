package kwess

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expiryLayout is the on-disk format of the access token expiry: local time,
// second precision, no zone. Kept stable so credential files written by older
// versions remain readable.
const expiryLayout = "2006-01-02 15:04:05"

// ExpiryTime is a time.Time that serializes as "2006-01-02 15:04:05" in local
// time. Sub-second precision is dropped on write.
type ExpiryTime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (e ExpiryTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Format(expiryLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExpiryTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(expiryLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parsing expiry date: %w", err)
	}
	e.Time = t
	return nil
}

// Credentials is the record returned by the authorization server's token
// exchange, plus the computed ExpiryDate. Exactly one record is current per
// Client; it is replaced as a whole on every successful refresh.
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	APIServer    string     `json:"api_server"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	ExpiryDate   ExpiryTime `json:"expiry_date"`
}

// setExpiry computes ExpiryDate from ExpiresIn relative to now. Always called
// with a freshly received ExpiresIn, never reused from a previous exchange.
func (c *Credentials) setExpiry(now time.Time) {
	c.ExpiryDate = ExpiryTime{now.Add(time.Duration(c.ExpiresIn) * time.Second).Truncate(time.Second)}
}

// Live reports whether the access token is still within its declared lifetime.
// An expiry exactly equal to now counts as live.
func (c *Credentials) Live(now time.Time) bool {
	return !c.ExpiryDate.Before(now)
}

// normalize strips any trailing slash from the API server base URL so paths
// can be joined with a single separator.
func (c *Credentials) normalize() {
	c.APIServer = strings.TrimRight(c.APIServer, "/")
}

// oauthToken converts the record into an oauth2.Token for use with
// oauth2.Transport.
func (c *Credentials) oauthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.ExpiryDate.Time,
	}
}

// loadCredentials reads a persisted credential record. A missing or malformed
// file is reported as an error; callers treat that as "no cached record".
func loadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credential file %s: %w", path, err)
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("credential file %s holds no access token", path)
	}
	creds.normalize()
	return &creds, nil
}

// save writes the full record atomically (temp file + rename) with owner-only
// permissions. The file seeds liveness detection on the next cold start.
func (c *Credentials) save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}
