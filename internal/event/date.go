package event

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"Jan 02 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"01/02/2006",
}

// ParseDate attempts to parse event Date text into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports ISO dates ("2025-10-12", RFC 3339), German dates ("12.10.2025", "12.10.25")
// and English month names ("Oct 12 2025").
func ParseDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return t
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}

// IsUpcoming checks if an event takes place today or later.
// Returns true if the date cannot be parsed (safer default).
func (e Event) IsUpcoming() bool {
	return e.isUpcomingAt(time.Now())
}

func (e Event) isUpcomingAt(now time.Time) bool {
	parsed := ParseDate(e.Date)
	if parsed.IsZero() {
		return true // Can't determine, include it
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.Before(today)
}
