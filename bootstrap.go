package kwess

import (
	"context"
	"fmt"
	"strings"
)

// StoreBootstrapToken saves a manually issued authorization token to the
// configured refresh-token store, seeding the credential chain for the next
// New. This is what a login command calls after the operator mints a token in
// the brokerage's developer portal.
func StoreBootstrapToken(ctx context.Context, cfg *Config, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty bootstrap token")
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Storage.newStore()
	if err != nil {
		return fmt.Errorf("creating token store: %w", err)
	}
	if err := store.Write(ctx, token); err != nil {
		return fmt.Errorf("saving bootstrap token: %w", err)
	}
	return nil
}
