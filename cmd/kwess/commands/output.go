package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

// printJSON pretty-prints a raw payload to stdout, colorized when stdout is a
// terminal.
func printJSON(payload []byte) {
	out := pretty.Pretty(payload)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		out = pretty.Color(out, nil)
	}
	os.Stdout.Write(out)
}

// parseDate accepts a bare date or a full timestamp.
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", value)
}

// parseRange reads the --start/--end flags. Start is required; a missing end
// means now.
func parseRange(start, end string) (time.Time, time.Time, error) {
	if start == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start is required")
	}
	startTime, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	var endTime time.Time
	if end != "" {
		if endTime, err = parseDate(end); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return startTime, endTime, nil
}
