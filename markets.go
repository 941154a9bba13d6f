package kwess

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ServerTime returns the API server's clock, both parsed and as the raw
// payload.
func (c *Client) ServerTime(ctx context.Context) (time.Time, json.RawMessage, error) {
	body, err := c.get(ctx, "v1/time", nil)
	if err != nil {
		return time.Time{}, nil, err
	}

	var payload struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return time.Time{}, nil, fmt.Errorf("parsing server time response: %w", err)
	}
	t, err := time.Parse(time.RFC3339, payload.Time)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("parsing server time %q: %w", payload.Time, err)
	}
	return t, body, nil
}

// Candles returns historical OHLC candles for the symbol between start and
// end at the given granularity (e.g. "OneMinute", "HalfHour", "OneDay"), one
// response payload per 29-day window. Each response carries at most 2000
// candles, a server-side cap.
func (c *Client) Candles(ctx context.Context, symbolID int, interval string, start, end time.Time) iter.Seq2[json.RawMessage, error] {
	path := "v1/markets/candles/" + strconv.Itoa(symbolID)
	return ChunkRange(start, end, func(chunkStart, chunkEnd time.Time) (json.RawMessage, error) {
		q := url.Values{}
		q.Set("startTime", c.datetime(chunkStart))
		q.Set("endTime", c.datetime(chunkEnd))
		q.Set("interval", interval)
		return c.get(ctx, path, q)
	})
}

// Markets returns information about the supported markets.
func (c *Client) Markets(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "v1/markets", nil)
}

// Quotes returns Level 1 quotes for one or more symbol ids. A single id uses
// the path form of the endpoint, several use the ids query form.
//
// Without a real-time data subscription each call counts as a snap quote
// against a per-market limit; once exceeded the server silently returns
// delayed data (check the payload's delay field).
func (c *Client) Quotes(ctx context.Context, symbolIDs ...int) (json.RawMessage, error) {
	switch len(symbolIDs) {
	case 0:
		return nil, fmt.Errorf("at least one symbol id required")
	case 1:
		return c.get(ctx, "v1/markets/quotes/"+strconv.Itoa(symbolIDs[0]), nil)
	default:
		q := url.Values{}
		q.Set("ids", joinInts(symbolIDs))
		return c.get(ctx, "v1/markets/quotes", q)
	}
}

// QuoteStrategies returns calculated Level 1 quotes for one or more multi-leg
// strategy variants, passed through verbatim as the variants parameter.
func (c *Client) QuoteStrategies(ctx context.Context, variants string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("variants", variants)
	return c.get(ctx, "v1/markets/quotes/strategies", q)
}

// QuoteOptions returns Level 1 quotes and Greeks for the given option ids,
// optionally narrowed by filters. The filters value is encoded verbatim into
// the request body.
func (c *Client) QuoteOptions(ctx context.Context, optionIDs []int, filters any) (json.RawMessage, error) {
	if len(optionIDs) == 0 {
		return nil, fmt.Errorf("at least one option id required")
	}
	payload := struct {
		OptionIDs []int `json:"optionIds"`
		Filters   any   `json:"filters,omitempty"`
	}{
		OptionIDs: optionIDs,
		Filters:   filters,
	}
	return c.post(ctx, "v1/markets/quotes/options", payload)
}

// joinInts renders ids as the comma-separated form the API expects.
func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
