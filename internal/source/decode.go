package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/nearby-events/internal/event"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses a fetched document into events, in document order.
// Events are returned as decoded; normalization is left to the caller.
func Decode(doc *Document) ([]event.Event, error) {
	body := bytes.TrimSpace(bytes.TrimPrefix(doc.Body, utf8BOM))
	if len(body) == 0 {
		return nil, errors.New("empty document")
	}

	if isHTML(doc.ContentType, body) {
		return decodeHTML(body)
	}
	return decodeJSON(body)
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	return body[0] == '<'
}

// decodeJSON accepts a bare array or an object wrapping the array in "events"
func decodeJSON(body []byte) ([]event.Event, error) {
	switch body[0] {
	case '[':
		var entries []*event.Event
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return derefEvents(entries)

	case '{':
		var wrapper struct {
			Events *[]*event.Event `json:"events"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		if wrapper.Events == nil {
			return nil, errors.New(`parsing JSON: object has no "events" array`)
		}
		return derefEvents(*wrapper.Events)

	default:
		return nil, fmt.Errorf("parsing JSON: unexpected leading character %q", body[0])
	}
}

// derefEvents rejects null entries, which would otherwise become blank events
func derefEvents(entries []*event.Event) ([]event.Event, error) {
	events := make([]event.Event, len(entries))
	for i, evt := range entries {
		if evt == nil {
			return nil, fmt.Errorf("parsing JSON: event %d is null", i)
		}
		events[i] = *evt
	}
	return events, nil
}
