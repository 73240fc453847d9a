// Package filter implements the proximity and free-text search over the loaded events.
//
// A search takes an optional reference point, an optional query text and a radius:
//   - With a reference point, events farther away than the radius are dropped,
//     the rest are matched against the query and sorted by ascending distance.
//   - Without a reference point, events are only matched against the query and
//     keep their listing order.
//
// Query matching is a case-folded substring test against the event's title, tags,
// description and city. An empty query matches every event.
//
// Example usage:
//
//	ref := geo.Point{Lat: 52.52, Lon: 13.40}
//	results, err := filter.Search(events, filter.Query{
//	    Reference: &ref,
//	    Text:      "jazz",
//	    RadiusKm:  10,
//	})
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// DefaultRadiusKm is used when the caller does not provide a radius
const DefaultRadiusKm = 10.0

// ErrInvalidRadius is returned for radius values that are negative, NaN or infinite
var ErrInvalidRadius = errors.New("invalid radius")

// Query represents search criteria
type Query struct {
	// Reference is the point distances are measured from. Nil disables the
	// distance filter and the distance ordering.
	Reference *geo.Point

	// Text is matched case-insensitively against the event's combined text
	Text string

	// RadiusKm bounds the distance from Reference (inclusive)
	RadiusKm float64

	// UpcomingOnly drops events whose date has already passed
	UpcomingOnly bool
}

// Result is a matched event, with its distance from the reference point when one was given
type Result struct {
	Event    event.Event
	Distance *float64 // kilometers
}

// MarshalJSON flattens the event fields and adds "distance_km" when known.
func (r Result) MarshalJSON() ([]byte, error) {
	type flat struct {
		event.Event
		DistanceKm *float64 `json:"distance_km,omitempty"`
	}
	return json.Marshal(flat{Event: r.Event, DistanceKm: r.Distance})
}

// Search returns the events matching q.
// The returned slice is never nil; an empty event list yields an empty result.
func Search(events []event.Event, q Query) ([]Result, error) {
	m := newMatcher(q.Text)
	results := make([]Result, 0)

	if q.Reference == nil {
		for _, evt := range events {
			if q.UpcomingOnly && !evt.IsUpcoming() {
				continue
			}
			if m.matches(evt) {
				results = append(results, Result{Event: evt})
			}
		}
		return results, nil
	}

	ref := *q.Reference
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("reference point: %w", err)
	}
	if err := ValidateRadius(q.RadiusKm); err != nil {
		return nil, err
	}

	for _, evt := range events {
		if q.UpcomingOnly && !evt.IsUpcoming() {
			continue
		}
		distance := geo.Distance(ref, evt.Point())
		// NaN distances from malformed event coordinates fail this comparison
		if !(distance <= q.RadiusKm) {
			continue
		}
		if !m.matches(evt) {
			continue
		}
		results = append(results, Result{Event: evt, Distance: &distance})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Distance < *results[j].Distance
	})

	return results, nil
}

// Matches reports whether evt's combined text contains text, ignoring case
// and surrounding whitespace. An empty text matches every event.
func Matches(evt event.Event, text string) bool {
	return newMatcher(text).matches(evt)
}

// ValidateRadius checks that radius is a finite, non-negative number of kilometers
func ValidateRadius(radiusKm float64) error {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, radiusKm)
	}
	return nil
}

// ParseRadius parses user input such as "10", "2.5" or "2,5".
// Empty input yields DefaultRadiusKm.
func ParseRadius(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultRadiusKm, nil
	}

	radius, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidRadius, text)
	}
	if err := ValidateRadius(radius); err != nil {
		return 0, err
	}
	return radius, nil
}

// matcher holds a folded needle. A cases.Caser is stateful, so each
// matcher owns its own and must not be shared between goroutines.
type matcher struct {
	caser  cases.Caser
	needle string
}

func newMatcher(text string) *matcher {
	caser := cases.Fold()
	return &matcher{
		caser:  caser,
		needle: caser.String(strings.TrimSpace(text)),
	}
}

func (m *matcher) fold(s string) string {
	return m.caser.String(s)
}

func (m *matcher) matches(evt event.Event) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.fold(evt.SearchText()), m.needle)
}
