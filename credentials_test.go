package kwess

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetExpiry(t *testing.T) {
	now := time.Date(2024, time.May, 3, 10, 15, 42, 987654321, time.Local)
	creds := &Credentials{ExpiresIn: 1800}
	creds.setExpiry(now)

	want := time.Date(2024, time.May, 3, 10, 45, 42, 0, time.Local)
	if !creds.ExpiryDate.Equal(want) {
		t.Errorf("expiry = %v, want %v (sub-second dropped)", creds.ExpiryDate.Time, want)
	}
}

func TestLive(t *testing.T) {
	now := time.Date(2024, time.May, 3, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"future", now.Add(time.Hour), true},
		{"exactly now", now, true},
		{"past", now.Add(-time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := &Credentials{ExpiryDate: ExpiryTime{tt.expiry}}
			if got := creds.Live(now); got != tt.want {
				t.Errorf("Live() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessToken.json")
	now := time.Now()

	creds := &Credentials{
		AccessToken:  "AT",
		TokenType:    "Bearer",
		APIServer:    "https://api01.example.com",
		RefreshToken: "RT",
		ExpiresIn:    1800,
	}
	creds.setExpiry(now)
	if err := creds.save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := loadCredentials(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.AccessToken != creds.AccessToken || loaded.RefreshToken != creds.RefreshToken {
		t.Errorf("tokens changed across round trip: %+v", loaded)
	}
	// The liveness verdict must survive persistence.
	for _, probe := range []time.Time{now, now.Add(29 * time.Minute), now.Add(31 * time.Minute)} {
		if got, want := loaded.Live(probe), creds.Live(probe); got != want {
			t.Errorf("Live(%v) = %v after reload, want %v", probe, got, want)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), ".") && strings.Contains(string(data), creds.ExpiryDate.Format(expiryLayout)+".") {
		t.Errorf("expiry persisted with sub-second precision: %s", data)
	}
	if !strings.Contains(string(data), creds.ExpiryDate.Format(expiryLayout)) {
		t.Errorf("expiry %q not found in %s", creds.ExpiryDate.Format(expiryLayout), data)
	}
}

func TestLoadCredentialsErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := loadCredentials(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	garbled := filepath.Join(dir, "garbled.json")
	if err := os.WriteFile(garbled, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCredentials(garbled); err == nil {
		t.Error("expected error for malformed file")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"access_token":"","expiry_date":"2024-01-01 00:00:00"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCredentials(empty); err == nil {
		t.Error("expected error for record without access token")
	}
}

func TestLoadCredentialsNormalizesAPIServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessToken.json")
	record := `{
    "access_token": "AT",
    "token_type": "Bearer",
    "api_server": "https://api01.example.com/",
    "refresh_token": "RT",
    "expires_in": 1800,
    "expiry_date": "2030-01-01 00:00:00"
}`
	if err := os.WriteFile(path, []byte(record), 0600); err != nil {
		t.Fatal(err)
	}

	creds, err := loadCredentials(path)
	if err != nil {
		t.Fatal(err)
	}
	if creds.APIServer != "https://api01.example.com" {
		t.Errorf("api server = %q, want trailing slash stripped", creds.APIServer)
	}
}
