package kwess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SymbolOptions returns the option chain for the underlying symbol.
func (c *Client) SymbolOptions(ctx context.Context, symbolID int) (json.RawMessage, error) {
	return c.get(ctx, "v1/symbols/"+strconv.Itoa(symbolID)+"/options", nil)
}

// SearchSymbols returns symbols whose ticker or description matches prefix,
// starting offset records into the result set.
func (c *Client) SearchSymbols(ctx context.Context, prefix string, offset int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("prefix", prefix)
	q.Set("offset", strconv.Itoa(offset))
	return c.get(ctx, "v1/symbols/search", q)
}

// SymbolsByIDs returns detailed symbol data for one or more symbol ids. A
// single id uses the path form of the endpoint, several use the ids query
// form.
func (c *Client) SymbolsByIDs(ctx context.Context, symbolIDs ...int) (json.RawMessage, error) {
	switch len(symbolIDs) {
	case 0:
		return nil, fmt.Errorf("at least one symbol id required")
	case 1:
		return c.get(ctx, "v1/symbols/"+strconv.Itoa(symbolIDs[0]), nil)
	default:
		q := url.Values{}
		q.Set("ids", joinInts(symbolIDs))
		return c.get(ctx, "v1/symbols", q)
	}
}

// SymbolsByNames returns detailed symbol data for one or more ticker names.
func (c *Client) SymbolsByNames(ctx context.Context, names ...string) (json.RawMessage, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one symbol name required")
	}
	q := url.Values{}
	q.Set("names", strings.Join(names, ","))
	return c.get(ctx, "v1/symbols", q)
}
