package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/pfrederiksen/nearby-events/internal/calendar"
	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
	"github.com/pfrederiksen/nearby-events/internal/status"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatAuto OutputFormat = "auto"
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Mode        string           `json:"mode"`
	Status      string           `json:"status"`
	Query       string           `json:"query,omitempty"`
	RadiusKm    *float64         `json:"radius_km,omitempty"`
	Location    *filter.Location `json:"location,omitempty"`
	Events      []filter.Result  `json:"events"`
	EventCount  int              `json:"event_count"`
}

// resolveFormat validates the format name; "auto" picks text for terminals and JSON otherwise.
func resolveFormat(name string, w io.Writer) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case FormatText, FormatJSON, FormatICS:
		return format, nil
	case FormatAuto, "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return FormatText, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json', 'ics' or 'auto')", name)
	}
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatICS:
		return writeICS(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Events) == 0 {
		fmt.Fprintln(w, status.NoEvents)
	}

	for i, r := range result.Events {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, r.Event.Title)
		fmt.Fprintf(w, "  %s\n", metaLine(r))
		if r.Event.Description != "" {
			fmt.Fprintf(w, "  %s\n", r.Event.Description)
		}
		if verbose {
			fmt.Fprintf(w, "  ID: %s\n", r.Event.ID)
			if r.Event.Tags != "" {
				fmt.Fprintf(w, "  Tags: %s\n", r.Event.Tags)
			}
			if r.Event.HasTicket() {
				fmt.Fprintf(w, "  Tickets: %s\n", r.Event.URL)
			} else {
				fmt.Fprintf(w, "  %s\n", status.NoTicket)
			}
		}
	}

	if result.Status != "" {
		fmt.Fprintf(w, "\n%s\n", result.Status)
	}
	return nil
}

// metaLine renders "city • date • distance", skipping empty parts
func metaLine(r filter.Result) string {
	parts := make([]string, 0, 3)
	if r.Event.City != "" {
		parts = append(parts, r.Event.City)
	}
	if r.Event.Date != "" {
		parts = append(parts, r.Event.Date)
	}
	if r.Distance != nil {
		parts = append(parts, status.Distance(*r.Distance))
	}
	return strings.Join(parts, " • ")
}

// writeICS outputs results as one iCalendar file
func writeICS(w io.Writer, result *OutputResult) error {
	events := make([]event.Event, len(result.Events))
	for i, r := range result.Events {
		events[i] = r.Event
	}

	name := "Nearby Events"
	if result.Location != nil && result.Location.City != "" {
		name = fmt.Sprintf("Events in %s", result.Location.City)
	}

	ics := calendar.GenerateBulkICS(events, name)
	if ics == "" {
		return fmt.Errorf("no events with a usable date to export")
	}
	_, err := io.WriteString(w, ics)
	return err
}
