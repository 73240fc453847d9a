package event

import (
	"encoding/json"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID("Jazz Night", "Berlin", "2025-10-12")
	id2 := GenerateID("  jazz night ", "BERLIN", "2025-10-12")

	if id1 != id2 {
		t.Errorf("GenerateID should ignore case and surrounding space, got %s vs %s", id1, id2)
	}

	if len(id1) != 36 {
		t.Errorf("expected UUID string of length 36, got %d (%s)", len(id1), id1)
	}

	if other := GenerateID("Jazz Night", "Berlin", "2025-10-13"); other == id1 {
		t.Error("different dates should produce different IDs")
	}
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(" Jazz Night ", "Berlin", "2025-10-12", "Live jazz", "music   jazz", 52.52, 13.40, "")

	if evt.ID == "" {
		t.Error("expected ID to be generated")
	}
	if evt.Title != "Jazz Night" {
		t.Errorf("expected title to be trimmed, got %q", evt.Title)
	}
	if evt.Tags != "music jazz" {
		t.Errorf("expected tags to be collapsed, got %q", evt.Tags)
	}
	if evt.HasTicket() {
		t.Error("event without URL should not have a ticket")
	}
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Event
		wantErr bool
	}{
		{
			name:  "all fields",
			input: `{"id":"e1","title":"Jazz Night","city":"Berlin","date":"2025-10-12","description":"Live jazz","tags":"music jazz","lat":52.52,"lon":13.4,"url":"https://tickets.example.com/1"}`,
			want:  Event{ID: "e1", Title: "Jazz Night", City: "Berlin", Date: "2025-10-12", Description: "Live jazz", Tags: "music jazz", Lat: 52.52, Lon: 13.4, URL: "https://tickets.example.com/1"},
		},
		{
			name:  "missing text fields stay empty",
			input: `{"title":"Food Market","lat":48.14,"lon":11.58}`,
			want:  Event{Title: "Food Market", Lat: 48.14, Lon: 11.58},
		},
		{
			name:  "null tags",
			input: `{"title":"Food Market","tags":null}`,
			want:  Event{Title: "Food Market"},
		},
		{
			name:  "tag list",
			input: `{"title":"Food Market","tags":["food","market"]}`,
			want:  Event{Title: "Food Market", Tags: "food market"},
		},
		{
			name:  "latitude and longitude aliases",
			input: `{"title":"Hafenfest","latitude":53.55,"longitude":9.99}`,
			want:  Event{Title: "Hafenfest", Lat: 53.55, Lon: 9.99},
		},
		{
			name:    "numeric tags rejected",
			input:   `{"title":"Broken","tags":42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Event
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvent_SearchText(t *testing.T) {
	evt := Event{Title: "Jazz Night", Tags: "music jazz", Description: "Live jazz", City: "Berlin"}
	want := "Jazz Night music jazz Live jazz Berlin"
	if got := evt.SearchText(); got != want {
		t.Errorf("SearchText() = %q, want %q", got, want)
	}

	empty := Event{Title: "Only Title"}
	if got := empty.SearchText(); got != "Only Title   " {
		t.Errorf("SearchText() with missing fields = %q", got)
	}
}
