package kwess

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"
)

// Account identifies one brokerage account of the authorized user.
type Account struct {
	Type              string `json:"type"`
	Number            string `json:"number"`
	Status            string `json:"status"`
	ClientAccountType string `json:"clientAccountType"`
	IsPrimary         bool   `json:"isPrimary"`
	IsBilling         bool   `json:"isBilling"`
}

// accountsResponse is the payload of GET /v1/accounts.
type accountsResponse struct {
	UserID   int       `json:"userId"`
	Accounts []Account `json:"accounts"`
}

// fetchAccounts retrieves the account list and replaces the in-memory cache.
// Called once during construction; it doubles as the liveness probe for a
// cached access token.
func (c *Client) fetchAccounts(ctx context.Context) error {
	body, err := c.get(ctx, "v1/accounts", nil)
	if err != nil {
		return err
	}

	var resp accountsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing accounts response: %w", err)
	}

	c.mu.Lock()
	c.userID = resp.UserID
	c.accounts = resp.Accounts
	c.mu.Unlock()
	return nil
}

// UserID returns the user identifier cached at construction.
func (c *Client) UserID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Accounts returns the cached account list in server order.
func (c *Client) Accounts() []Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// FindAccountNumber returns the number of the first cached account whose type
// matches accountType, comparing case-insensitively ("tfsa" matches "TFSA").
// Pure lookup: no network access.
func (c *Client) FindAccountNumber(accountType string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, account := range c.accounts {
		if strings.EqualFold(accountType, account.Type) {
			return account.Number, nil
		}
	}
	return "", fmt.Errorf("no %q account: %w", accountType, ErrAccountNotFound)
}

// Activities returns the account activities for the account of the given type
// between start and end, one response payload per 29-day window. A zero end
// means now.
func (c *Client) Activities(ctx context.Context, accountType string, start, end time.Time) iter.Seq2[json.RawMessage, error] {
	return c.chunkedAccountCall(ctx, accountType, "activities", nil, start, end)
}

// Orders returns the account orders between start and end, one response
// payload per 29-day window. The state filter accepts anything starting with
// "o" for Open or "c" for Closed; everything else means All.
func (c *Client) Orders(ctx context.Context, accountType, stateFilter string, start, end time.Time) iter.Seq2[json.RawMessage, error] {
	extra := url.Values{}
	extra.Set("stateFilter", normalizeStateFilter(stateFilter))
	return c.chunkedAccountCall(ctx, accountType, "orders", extra, start, end)
}

// OrdersByIDs returns the orders with the given ids for the account of the
// given type.
func (c *Client) OrdersByIDs(ctx context.Context, accountType string, orderIDs ...int) (json.RawMessage, error) {
	if len(orderIDs) == 0 {
		return nil, fmt.Errorf("at least one order id required")
	}
	number, err := c.FindAccountNumber(accountType)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("ids", joinInts(orderIDs))
	return c.get(ctx, "v1/accounts/"+number+"/orders", q)
}

// Executions returns the account executions between start and end, one
// response payload per 29-day window.
func (c *Client) Executions(ctx context.Context, accountType string, start, end time.Time) iter.Seq2[json.RawMessage, error] {
	return c.chunkedAccountCall(ctx, accountType, "executions", nil, start, end)
}

// Balances returns the current balances for the account of the given type.
func (c *Client) Balances(ctx context.Context, accountType string) (json.RawMessage, error) {
	number, err := c.FindAccountNumber(accountType)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "v1/accounts/"+number+"/balances", nil)
}

// Positions returns the current positions for the account of the given type.
func (c *Client) Positions(ctx context.Context, accountType string) (json.RawMessage, error) {
	number, err := c.FindAccountNumber(accountType)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, "v1/accounts/"+number+"/positions", nil)
}

// chunkedAccountCall resolves the account number once, then queries one
// account resource per 29-day window via ChunkRange.
func (c *Client) chunkedAccountCall(ctx context.Context, accountType, resource string, extra url.Values, start, end time.Time) iter.Seq2[json.RawMessage, error] {
	number, err := c.FindAccountNumber(accountType)
	if err != nil {
		return errSeq[json.RawMessage](err)
	}
	path := "v1/accounts/" + number + "/" + resource

	return ChunkRange(start, end, func(chunkStart, chunkEnd time.Time) (json.RawMessage, error) {
		q := url.Values{}
		for key, values := range extra {
			q[key] = values
		}
		q.Set("startTime", c.datetime(chunkStart))
		q.Set("endTime", c.datetime(chunkEnd))
		return c.get(ctx, path, q)
	})
}

// normalizeStateFilter maps free-form order state input onto the three values
// the API accepts.
func normalizeStateFilter(filter string) string {
	switch {
	case strings.HasPrefix(strings.ToLower(filter), "o"):
		return "Open"
	case strings.HasPrefix(strings.ToLower(filter), "c"):
		return "Closed"
	default:
		return "All"
	}
}

// errSeq yields a single error and stops. Used when a lazy sequence fails
// before its first query.
func errSeq[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}
