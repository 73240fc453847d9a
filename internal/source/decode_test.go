package source

import (
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html lang="de">
<head>
<title>Veranstaltungen</title>
<script type="application/ld+json">
{"@context": "https://schema.org", "@type": "Organization", "name": "Kulturamt"}
</script>
<script type="application/ld+json">
[
  {
    "@context": "https://schema.org",
    "@type": "MusicEvent",
    "@id": "https://example.com/events/jazz-night",
    "name": "Jazz Night",
    "startDate": "2025-10-12T20:00",
    "description": "Live jazz",
    "keywords": "music, jazz",
    "location": {
      "@type": "Place",
      "name": "Quasimodo",
      "address": {"@type": "PostalAddress", "addressLocality": "Berlin", "postalCode": "10623"},
      "geo": {"@type": "GeoCoordinates", "latitude": 52.52, "longitude": "13.40"}
    },
    "offers": [{"@type": "Offer", "url": "https://tickets.example.com/jazz"}]
  },
  {
    "@type": "Event",
    "name": "No coordinates",
    "location": {"@type": "Place", "address": "Hamburg"}
  }
]
</script>
<script type="application/ld+json">
{"@context": "https://schema.org", "@graph": [
  {"@type": ["Event", "Festival"], "name": "Food Market", "keywords": ["food", "market"],
   "location": [{"address": "München", "geo": {"latitude": 48.137, "longitude": 11.575}}],
   "url": "https://example.com/food"}
]}
</script>
</head>
<body><h1>Veranstaltungen</h1></body>
</html>`

func TestDecode_JSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantTitles []string
		wantErr    bool
	}{
		{
			name:       "array",
			body:       `[{"title":"Jazz Night","city":"Berlin","lat":52.52,"lon":13.40},{"title":"Food Market","city":"Munich","lat":48.137,"lon":11.575}]`,
			wantTitles: []string{"Jazz Night", "Food Market"},
		},
		{
			name:       "wrapped in events object",
			body:       `{"events":[{"title":"Jazz Night"}]}`,
			wantTitles: []string{"Jazz Night"},
		},
		{
			name:       "empty array is valid",
			body:       `[]`,
			wantTitles: []string{},
		},
		{
			name:       "byte order mark and whitespace",
			body:       "\xEF\xBB\xBF\n  [{\"title\":\"Jazz Night\"}]",
			wantTitles: []string{"Jazz Night"},
		},
		{
			name:    "null entry",
			body:    `[null, {"title":"Jazz Night","city":"Berlin","lat":52.52,"lon":13.40}]`,
			wantErr: true,
		},
		{
			name:    "null entry in events object",
			body:    `{"events":[{"title":"Jazz Night"}, null]}`,
			wantErr: true,
		},
		{
			name:    "events is null",
			body:    `{"events":null}`,
			wantErr: true,
		},
		{
			name:    "object without events",
			body:    `{"items":[]}`,
			wantErr: true,
		},
		{
			name:    "truncated JSON",
			body:    `[{"title":"Jazz`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			body:    `title,city`,
			wantErr: true,
		},
		{
			name:    "empty document",
			body:    "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := Decode(&Document{Body: []byte(tt.body), ContentType: "application/json"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(events) != len(tt.wantTitles) {
				t.Fatalf("Decode() returned %d events, want %d", len(events), len(tt.wantTitles))
			}
			for i, evt := range events {
				if evt.Title != tt.wantTitles[i] {
					t.Errorf("event %d title = %q, want %q", i, evt.Title, tt.wantTitles[i])
				}
			}
		})
	}
}

func TestDecode_HTML(t *testing.T) {
	events, err := Decode(&Document{Body: []byte(sampleHTML), ContentType: "text/html; charset=utf-8"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events with coordinates, got %d: %+v", len(events), events)
	}

	jazz := events[0]
	if jazz.Title != "Jazz Night" || jazz.City != "Berlin" {
		t.Errorf("unexpected first event: %+v", jazz)
	}
	if jazz.Lat != 52.52 || jazz.Lon != 13.40 {
		t.Errorf("expected coordinates 52.52,13.40 (string longitude accepted), got %v,%v", jazz.Lat, jazz.Lon)
	}
	if jazz.Tags != "music jazz" {
		t.Errorf("expected keywords split into tags, got %q", jazz.Tags)
	}
	if jazz.URL != "https://tickets.example.com/jazz" {
		t.Errorf("expected offer URL as ticket URL, got %q", jazz.URL)
	}
	if jazz.ID != "https://example.com/events/jazz-night" {
		t.Errorf("expected @id as event ID, got %q", jazz.ID)
	}
	if jazz.Date != "2025-10-12T20:00" {
		t.Errorf("expected startDate as date, got %q", jazz.Date)
	}

	food := events[1]
	if food.Title != "Food Market" || food.City != "München" {
		t.Errorf("unexpected @graph event: %+v", food)
	}
	if food.Tags != "food market" {
		t.Errorf("expected keyword list joined, got %q", food.Tags)
	}
	if food.URL != "https://example.com/food" {
		t.Errorf("expected event URL without offers, got %q", food.URL)
	}
}

func TestDecode_HTMLSniffedWithoutContentType(t *testing.T) {
	events, err := Decode(&Document{Body: []byte(sampleHTML)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
}

func TestDecode_HTMLWithoutEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no JSON-LD", body: `<html><body><p>Keine Events</p></body></html>`},
		{name: "only malformed JSON-LD", body: `<html><script type="application/ld+json">{broken</script></html>`},
		{name: "no event types", body: `<html><script type="application/ld+json">{"@type":"Organization"}</script></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(&Document{Body: []byte(tt.body), ContentType: "text/html"}); err == nil {
				t.Error("expected an error for a page without usable events")
			}
		})
	}
}

func TestDecode_HTMLCompactIRIs(t *testing.T) {
	body := `<html><script type="application/ld+json">
{"@context": {"schema": "https://schema.org/"}, "@graph": [
  {"@type": "schema:MusicEvent", "schema:name": "Jazz Night", "schema:startDate": "2025-10-12",
   "schema:location": {"schema:address": {"schema:addressLocality": "Berlin"},
     "schema:geo": {"schema:latitude": 52.52, "schema:longitude": 13.40}}},
  {"@type": "https://schema.org/Festival", "name": "Food Market", "https://schema.org/name": "ignored",
   "location": {"address": "München", "geo": {"latitude": 48.137, "longitude": 11.575}}}
]}
</script></html>`

	events, err := Decode(&Document{Body: []byte(body), ContentType: "text/html"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if got := events[0]; got.Title != "Jazz Night" || got.City != "Berlin" || got.Lat != 52.52 || got.Date != "2025-10-12" {
		t.Errorf("prefixed keys not expanded: %+v", got)
	}
	if got := events[1].Title; got != "Food Market" {
		t.Errorf("bare key should win over the prefixed one, got title %q", got)
	}
}

func TestDecode_HTMLNonFiniteCoordinates(t *testing.T) {
	body := `<html><script type="application/ld+json">[
  {"@type": "Event", "name": "Broken", "location": {"address": "Berlin", "geo": {"latitude": "NaN", "longitude": 13.40}}},
  {"@type": "Event", "name": "Also broken", "location": {"address": "Berlin", "geo": {"latitude": 52.52, "longitude": "-Inf"}}},
  {"@type": "Event", "name": "Jazz Night", "location": {"address": "Berlin", "geo": {"latitude": 52.52, "longitude": 13.40}}}
]</script></html>`

	events, err := Decode(&Document{Body: []byte(body), ContentType: "text/html"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Jazz Night" {
		t.Errorf("expected only the event with finite coordinates, got %+v", events)
	}
}
