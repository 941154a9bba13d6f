package kwess

import "time"

// datetimeLayout is the timestamp format the API expects in query parameters,
// e.g. "2011-02-01T00:00:00-05:00".
const datetimeLayout = "2006-01-02T15:04:05-07:00"

// FormatDateTime renders t in the API's timestamp format. With gmt set the
// instant is converted to UTC first; otherwise the time's own zone (typically
// local) supplies the offset.
func FormatDateTime(t time.Time, gmt bool) string {
	if gmt {
		t = t.UTC()
	}
	return t.Format(datetimeLayout)
}

// datetime formats t per the client's configured gmt flag, substituting the
// current time for a zero value.
func (c *Client) datetime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return FormatDateTime(t, c.cfg.GMT)
}
