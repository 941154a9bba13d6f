// Package kwess is a read-only client for the Questrade REST trading API.
//
// The brokerage's OAuth2 flow deviates from the standard: a manually issued
// token from the APP HUB is exchanged for a short-lived access token (about
// 30 minutes) plus a single-use refresh token (about 3 days), and the
// exchange itself is a GET with query parameters rather than a form POST.
// The Client owns this lifecycle end to end: it caches the full credential
// record on disk, restores it across restarts while still live, and rotates
// the refresh token through a configurable store (file, environment variable,
// or OS keyring).
//
//	cfg, _ := kwess.Default()
//	client, err := kwess.New(ctx, cfg)
//	if err != nil {
//		// a *ConfigError means the bootstrap token must be minted again
//	}
//	balances, err := client.Balances(ctx, "tfsa")
//
// Client implements oauth2.TokenSource, so the access token is attached to
// every resource call by oauth2.Transport and re-exchanged transparently when
// it expires.
//
// Date-ranged endpoints (Activities, Orders, Executions, Candles) work around
// the API's 30-day query window by splitting the range into 29-day chunks and
// returning a lazy iter.Seq2, one response payload per chunk:
//
//	for payload, err := range client.Activities(ctx, "margin", start, end) {
//		if err != nil {
//			return err
//		}
//		// one ≤29-day window of activities
//	}
//
// Response payloads are returned as raw JSON; this package does not model
// the shape of each endpoint's body.
package kwess
