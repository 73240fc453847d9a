package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/geo"
)

// schemaPrefixes are the compact and full IRI forms of the schema.org vocabulary
var schemaPrefixes = []string{"schema:", "https://schema.org/", "http://schema.org/"}

// decodeHTML extracts schema.org events from application/ld+json blocks.
// Events without finite geo coordinates are skipped since they cannot be placed.
// Malformed blocks are ignored as long as at least one block yields events.
func decodeHTML(body []byte) ([]event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	events := make([]event.Event, 0)
	var blockErr error
	blocks := 0

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		blocks++
		var data interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			if blockErr == nil {
				blockErr = fmt.Errorf("decoding JSON-LD block %d: %w", i, err)
			}
			return
		}

		for _, node := range flattenNodes(expandKeys(data)) {
			if !isEventNode(node) {
				continue
			}
			if evt, ok := eventFromNode(node); ok {
				events = append(events, evt)
			}
		}
	})

	if len(events) > 0 {
		return events, nil
	}
	if blockErr != nil {
		return nil, blockErr
	}
	if blocks == 0 {
		return nil, errors.New("parsing HTML: no JSON-LD blocks found")
	}
	return nil, errors.New("parsing HTML: no schema.org events with coordinates found")
}

// expandKeys rewrites schema.org property keys such as "schema:name" to their
// bare form. A bare key present in the same object wins.
func expandKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = expandKeys(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if trimSchema(k) == k {
				out[k] = expandKeys(val)
			}
		}
		for k, val := range t {
			bare := trimSchema(k)
			if _, ok := out[bare]; !ok {
				out[bare] = expandKeys(val)
			}
		}
		return out
	}
	return v
}

func trimSchema(s string) string {
	for _, prefix := range schemaPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix)
		}
	}
	return s
}

// flattenNodes walks arrays and @graph containers and returns every object
func flattenNodes(v interface{}) []map[string]interface{} {
	var nodes []map[string]interface{}
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			nodes = append(nodes, flattenNodes(item)...)
		}
	case map[string]interface{}:
		nodes = append(nodes, t)
		if graph, ok := t["@graph"]; ok {
			nodes = append(nodes, flattenNodes(graph)...)
		}
	}
	return nodes
}

// isEventNode matches Event and its subtypes (MusicEvent, Festival, ...)
func isEventNode(node map[string]interface{}) bool {
	for _, typ := range stringList(node["@type"]) {
		typ = trimSchema(typ)
		if strings.HasSuffix(typ, "Event") || typ == "Festival" {
			return true
		}
	}
	return false
}

func eventFromNode(node map[string]interface{}) (event.Event, bool) {
	place := asObject(first(node["location"]))
	coords := asObject(place["geo"])
	lat, latOK := number(coords["latitude"])
	lon, lonOK := number(coords["longitude"])
	if !latOK || !lonOK {
		return event.Event{}, false
	}
	if err := (geo.Point{Lat: lat, Lon: lon}).Validate(); err != nil {
		return event.Event{}, false
	}

	evt := event.Event{
		ID:          text(node["@id"]),
		Title:       text(node["name"]),
		City:        city(place),
		Date:        text(node["startDate"]),
		Description: text(node["description"]),
		Tags:        strings.Join(keywords(node["keywords"]), " "),
		Lat:         lat,
		Lon:         lon,
		URL:         ticketURL(node),
	}
	return evt, true
}

// city reads addressLocality, falling back to a plain-text address
func city(place map[string]interface{}) string {
	switch addr := first(place["address"]).(type) {
	case string:
		return strings.TrimSpace(addr)
	case map[string]interface{}:
		return text(addr["addressLocality"])
	}
	return ""
}

// ticketURL prefers the first offer's URL over the event page
func ticketURL(node map[string]interface{}) string {
	if offer := asObject(first(node["offers"])); offer != nil {
		if u := text(offer["url"]); u != "" {
			return u
		}
	}
	return text(node["url"])
}

// keywords accepts "a, b, c" or ["a", "b"]
func keywords(v interface{}) []string {
	var out []string
	for _, item := range stringList(v) {
		for _, kw := range strings.Split(item, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}

func first(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func asObject(v interface{}) map[string]interface{} {
	obj, _ := v.(map[string]interface{})
	return obj
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// number accepts JSON numbers and numeric strings
func number(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
