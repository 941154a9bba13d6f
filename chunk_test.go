package kwess

import (
	"errors"
	"testing"
	"time"
)

// span records one sub-range handed to the query function.
type span struct {
	start, end time.Time
}

// collect drains a chunked sequence, returning the queried sub-ranges and any
// yielded errors.
func collect(t *testing.T, start, end time.Time) []span {
	t.Helper()
	var spans []span
	for _, err := range ChunkRange(start, end, func(s, e time.Time) (int, error) {
		spans = append(spans, span{s, e})
		return 0, nil
	}) {
		if err != nil {
			t.Fatalf("unexpected query error: %v", err)
		}
	}
	return spans
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChunkRangeSingleWindow(t *testing.T) {
	tests := []struct {
		name string
		days int
	}{
		{"one day", 1},
		{"two weeks", 14},
		{"exactly 29 days", 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := date(2024, time.January, 1)
			end := start.AddDate(0, 0, tt.days)
			spans := collect(t, start, end)
			if len(spans) != 1 {
				t.Fatalf("got %d chunks, want 1", len(spans))
			}
			if !spans[0].start.Equal(start) || !spans[0].end.Equal(end) {
				t.Errorf("chunk = [%v, %v), want [%v, %v)", spans[0].start, spans[0].end, start, end)
			}
		})
	}
}

func TestChunkRangeLongRange(t *testing.T) {
	// 74 days: two full 29-day strides plus a 16-day tail.
	start := date(2024, time.January, 1)
	end := date(2024, time.March, 15)

	spans := collect(t, start, end)
	want := []span{
		{date(2024, time.January, 1), date(2024, time.January, 30)},
		{date(2024, time.January, 30), date(2024, time.February, 28)},
		{date(2024, time.February, 28), date(2024, time.March, 15)},
	}
	if len(spans) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(spans), len(want))
	}
	for i := range want {
		if !spans[i].start.Equal(want[i].start) || !spans[i].end.Equal(want[i].end) {
			t.Errorf("chunk %d = [%v, %v), want [%v, %v)", i, spans[i].start, spans[i].end, want[i].start, want[i].end)
		}
	}
}

func TestChunkRangePartition(t *testing.T) {
	// The chunks must form a contiguous, chronologically increasing
	// partition in 29-day strides, tail aside.
	start := date(2023, time.June, 15)
	end := start.Add(100*24*time.Hour + 3*time.Hour)

	spans := collect(t, start, end)
	if len(spans) == 0 {
		t.Fatal("no chunks")
	}
	if !spans[0].start.Equal(start) {
		t.Errorf("first chunk starts at %v, want %v", spans[0].start, start)
	}
	for i, s := range spans {
		if !s.end.After(s.start) {
			t.Errorf("chunk %d not increasing: [%v, %v)", i, s.start, s.end)
		}
		if s.end.Sub(s.start) > maxQueryWindow {
			t.Errorf("chunk %d spans %v, over the limit", i, s.end.Sub(s.start))
		}
		if i > 0 && !s.start.Equal(spans[i-1].end) {
			t.Errorf("gap between chunk %d and %d: %v != %v", i-1, i, spans[i-1].end, s.start)
		}
		if i < len(spans)-1 && s.end.Sub(s.start) != maxQueryWindow {
			t.Errorf("non-final chunk %d spans %v, want exactly %v", i, s.end.Sub(s.start), maxQueryWindow)
		}
	}
	last := spans[len(spans)-1]
	if !last.end.Equal(end) {
		t.Errorf("last chunk ends at %v, want %v", last.end, end)
	}
}

func TestChunkRangeSubDayTailDropped(t *testing.T) {
	// A trailing remainder under one day is skipped entirely.
	start := date(2024, time.January, 1)
	end := start.Add(29*24*time.Hour + 6*time.Hour)

	spans := collect(t, start, end)
	if len(spans) != 1 {
		t.Fatalf("got %d chunks, want 1", len(spans))
	}
	wantEnd := start.Add(29 * 24 * time.Hour)
	if !spans[0].end.Equal(wantEnd) {
		t.Errorf("chunk ends at %v, want %v (tail dropped)", spans[0].end, wantEnd)
	}
}

func TestChunkRangeOneDayTailKept(t *testing.T) {
	start := date(2024, time.January, 1)
	end := start.Add(30 * 24 * time.Hour)

	spans := collect(t, start, end)
	if len(spans) != 2 {
		t.Fatalf("got %d chunks, want 2", len(spans))
	}
	if got := spans[1].end.Sub(spans[1].start); got != 24*time.Hour {
		t.Errorf("tail spans %v, want 24h", got)
	}
}

func TestChunkRangeZeroEndMeansNow(t *testing.T) {
	start := time.Now().Add(-40 * 24 * time.Hour)

	var spans []span
	for _, err := range ChunkRange(start, time.Time{}, func(s, e time.Time) (int, error) {
		spans = append(spans, span{s, e})
		return 0, nil
	}) {
		if err != nil {
			t.Fatalf("unexpected query error: %v", err)
		}
	}
	if len(spans) != 2 {
		t.Fatalf("got %d chunks, want 2", len(spans))
	}
	if time.Since(spans[1].end) > time.Minute {
		t.Errorf("captured end %v is not close to now", spans[1].end)
	}
}

func TestChunkRangeStopsAfterError(t *testing.T) {
	start := date(2024, time.January, 1)
	end := start.Add(90 * 24 * time.Hour)
	boom := errors.New("boom")

	calls := 0
	var got []error
	for _, err := range ChunkRange(start, end, func(s, e time.Time) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return 0, nil
	}) {
		got = append(got, err)
	}

	if calls != 2 {
		t.Errorf("query called %d times, want 2 (no queries after a failure)", calls)
	}
	if len(got) != 2 || got[0] != nil || !errors.Is(got[1], boom) {
		t.Errorf("yielded errors %v, want [nil boom]", got)
	}
}

func TestChunkRangeConsumerControlsPacing(t *testing.T) {
	start := date(2024, time.January, 1)
	end := start.Add(90 * 24 * time.Hour)

	calls := 0
	for range ChunkRange(start, end, func(s, e time.Time) (int, error) {
		calls++
		return 0, nil
	}) {
		break
	}
	if calls != 1 {
		t.Errorf("query called %d times before break, want 1 (nothing prefetches)", calls)
	}
}
