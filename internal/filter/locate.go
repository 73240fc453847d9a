package filter

import (
	"strings"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// Location is a coordinate borrowed from an event whose city matched a lookup
type Location struct {
	geo.Point
	City string `json:"city"`
}

// Locate approximates geocoding for a city name or postal code: it returns the
// coordinate of the first event, in listing order, whose city contains text
// (case-insensitive). It can only resolve places that already have an event.
// Returns false for empty text or when no city matches.
func Locate(events []event.Event, text string) (Location, bool) {
	m := newMatcher(text)
	if m.needle == "" {
		return Location{}, false
	}

	for _, evt := range events {
		if evt.City == "" {
			continue
		}
		if strings.Contains(m.fold(evt.City), m.needle) {
			return Location{Point: evt.Point(), City: evt.City}, true
		}
	}

	return Location{}, false
}
