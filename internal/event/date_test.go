package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		dateText  string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantZero  bool
	}{
		{
			name:      "ISO date",
			dateText:  "2025-10-12",
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   12,
		},
		{
			name:      "ISO date with time",
			dateText:  "2025-10-12T19:30",
			wantYear:  2025,
			wantMonth: time.October,
			wantDay:   12,
		},
		{
			name:      "RFC 3339",
			dateText:  "2025-11-01T20:00:00+01:00",
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   1,
		},
		{
			name:      "German date",
			dateText:  "24.12.2025",
			wantYear:  2025,
			wantMonth: time.December,
			wantDay:   24,
		},
		{
			name:      "German short date",
			dateText:  "4.3.26",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   4,
		},
		{
			name:      "English month name",
			dateText:  "Mar 13 2026",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   13,
		},
		{
			name:      "Surrounding whitespace",
			dateText:  "  2026-01-05 ",
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   5,
		},
		{
			name:     "Empty string",
			dateText: "",
			wantZero: true,
		},
		{
			name:     "Invalid format",
			dateText: "Sommer 2026",
			wantZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.dateText)
			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v, want zero time", tt.dateText, got)
				}
				return
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q) = %v, want %d-%02d-%02d", tt.dateText, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestEvent_IsUpcoming(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want bool
	}{
		{name: "future date", date: "2026-06-01", want: true},
		{name: "same day", date: "2026-05-10", want: true},
		{name: "past date", date: "2026-05-09", want: false},
		{name: "unparseable date is kept", date: "demnächst", want: true},
		{name: "empty date is kept", date: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := Event{Date: tt.date}
			if got := evt.isUpcomingAt(now); got != tt.want {
				t.Errorf("isUpcomingAt(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
