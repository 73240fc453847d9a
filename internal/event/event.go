package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// idNamespace scopes generated event IDs to this project
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/nearby-events"))

// Event represents a single listed event
type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	City        string  `json:"city"`
	Date        string  `json:"date"` // Free text, not validated
	Description string  `json:"description"`
	Tags        string  `json:"tags"` // Free-form, space separated
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	URL         string  `json:"url,omitempty"` // Ticket URL
}

// GenerateID creates a deterministic ID for an event based on stable fields
func GenerateID(title, city, date string) string {
	name := strings.ToLower(strings.TrimSpace(title)) + "|" +
		strings.ToLower(strings.TrimSpace(city)) + "|" +
		strings.TrimSpace(date)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// NewEvent creates a normalized Event with its ID populated
func NewEvent(title, city, date, description, tags string, lat, lon float64, url string) Event {
	evt := Event{
		Title:       title,
		City:        city,
		Date:        date,
		Description: description,
		Tags:        tags,
		Lat:         lat,
		Lon:         lon,
		URL:         url,
	}
	evt.Normalize()
	return evt
}

// Normalize trims text fields and fills in a missing ID.
func (e *Event) Normalize() {
	e.ID = strings.TrimSpace(e.ID)
	e.Title = strings.TrimSpace(e.Title)
	e.City = strings.TrimSpace(e.City)
	e.Date = strings.TrimSpace(e.Date)
	e.Description = strings.TrimSpace(e.Description)
	e.Tags = strings.Join(strings.Fields(e.Tags), " ")
	e.URL = strings.TrimSpace(e.URL)

	if e.ID == "" {
		e.ID = GenerateID(e.Title, e.City, e.Date)
	}
}

// Point returns the event location
func (e Event) Point() geo.Point {
	return geo.Point{Lat: e.Lat, Lon: e.Lon}
}

// SearchText returns the combined text matched by free-text queries:
// title, tags, description and city separated by single spaces.
func (e Event) SearchText() string {
	return e.Title + " " + e.Tags + " " + e.Description + " " + e.City
}

// HasTicket reports whether the event links to a ticket page
func (e Event) HasTicket() bool {
	return e.URL != ""
}

// UnmarshalJSON accepts tags either as a string or as a list of strings, and
// "latitude"/"longitude" as aliases for "lat"/"lon".
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var raw struct {
		plain
		Tags      json.RawMessage `json:"tags"`
		Latitude  *float64        `json:"latitude"`
		Longitude *float64        `json:"longitude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	tags, err := decodeTags(raw.Tags)
	if err != nil {
		return err
	}

	*e = Event(raw.plain)
	e.Tags = tags
	if raw.Latitude != nil {
		e.Lat = *raw.Latitude
	}
	if raw.Longitude != nil {
		e.Lon = *raw.Longitude
	}
	return nil
}

// decodeTags flattens the tags value into one space separated string
func decodeTags(data json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return "", fmt.Errorf("decoding tags: expected string or list of strings")
	}
	return strings.Join(list, " "), nil
}
