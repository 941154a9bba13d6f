package kwess

import (
	"iter"
	"time"
)

const (
	// maxQueryWindow is the widest date range the API accepts per query.
	maxQueryWindow = 29 * 24 * time.Hour

	// minTailWindow is the smallest trailing remainder still worth a query.
	// A remainder shorter than one day is not queried at all.
	minTailWindow = 24 * time.Hour
)

// ChunkRange splits [start, end) into consecutive sub-ranges of at most 29
// days and lazily calls query once per sub-range, yielding each result in
// chronological order. Nothing runs ahead of the consumer: breaking out of
// the loop stops further queries.
//
// A zero end is bound to time.Now once, up front. Iteration ends after the
// first query error. A trailing remainder shorter than one day is silently
// skipped, so a range of 29 days plus a few hours produces a single 29-day
// sub-range; call sites that must not lose the tail should round end up to
// the next day boundary.
func ChunkRange[T any](start, end time.Time, query func(start, end time.Time) (T, error)) iter.Seq2[T, error] {
	if end.IsZero() {
		end = time.Now()
	}
	return func(yield func(T, error) bool) {
		if end.Sub(start) <= maxQueryWindow {
			yield(query(start, end))
			return
		}
		cursor := start
		for end.Sub(cursor) > maxQueryWindow {
			next := cursor.Add(maxQueryWindow)
			res, err := query(cursor, next)
			if !yield(res, err) || err != nil {
				return
			}
			cursor = next
		}
		if end.Sub(cursor) >= minTailWindow {
			yield(query(cursor, end))
		}
	}
}
