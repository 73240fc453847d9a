package cli

import (
	"testing"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
)

func km(v float64) *float64 { return &v }

func TestSortResults(t *testing.T) {
	base := []filter.Result{
		{Event: event.Event{Title: "b Konzert", Date: "2025-10-20"}, Distance: km(3)},
		{Event: event.Event{Title: "Ausstellung", Date: "bald"}, Distance: km(1)},
		{Event: event.Event{Title: "Café", Date: "12.10.2025"}},
		{Event: event.Event{Title: "ausstellung", Date: "2025-10-01"}, Distance: km(1)},
	}

	tests := []struct {
		name  string
		order SortOrder
		want  []string
	}{
		{
			name:  "unchanged",
			order: SortByRelevance,
			want:  []string{"b Konzert", "Ausstellung", "Café", "ausstellung"},
		},
		{
			name:  "distance, missing last, ties stable",
			order: SortByDistance,
			want:  []string{"Ausstellung", "ausstellung", "b Konzert", "Café"},
		},
		{
			name:  "date, unparseable last",
			order: SortByDate,
			want:  []string{"ausstellung", "Café", "b Konzert", "Ausstellung"},
		},
		{
			name:  "title case-insensitive, then date",
			order: SortByTitle,
			want:  []string{"ausstellung", "Ausstellung", "b Konzert", "Café"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]filter.Result, len(base))
			copy(results, base)

			sortResults(results, tt.order)

			for i, want := range tt.want {
				if results[i].Event.Title != want {
					t.Errorf("position %d = %q, want %q", i, results[i].Event.Title, want)
				}
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    SortOrder
		wantErr bool
	}{
		{"", SortByRelevance, false},
		{"distance", SortByDistance, false},
		{" Date ", SortByDate, false},
		{"TITLE", SortByTitle, false},
		{"size", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSortOrder(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSortOrder(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSortOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
