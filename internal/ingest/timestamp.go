package ingest

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order, first match wins. The day-first layout
// deliberately precedes the month-first one; for day values <= 12 both parse
// and the day-first interpretation is kept.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006/01/02 15:04:05",
}

// ParseTimestamp normalizes a raw timestamp string into a UTC time value.
// Fully-specified RFC 3339 strings are tried first, then the layout list.
// Empty or unparseable input yields nil, never an error: rows with bad
// timestamps are kept with a NULL timestamp.
func ParseTimestamp(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}
