package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/nearby-events/internal/event"
)

// ErrNoDate is returned for events whose date text cannot be parsed
var ErrNoDate = errors.New("event date cannot be parsed")

// timedDuration is the assumed length of events that have a start time
const timedDuration = 4 * time.Hour

const uidDomain = "nearby-events"

// GenerateICS generates an iCalendar (.ics) file for an event
func GenerateICS(evt event.Event) (string, error) {
	var ics strings.Builder

	writeHeader(&ics, "")
	if err := writeEvent(&ics, evt, time.Now()); err != nil {
		return "", err
	}
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), nil
}

// GenerateBulkICS generates one calendar holding all events with a usable date.
// Events whose date cannot be parsed are left out. Returns an empty string
// when no event could be included.
func GenerateBulkICS(events []event.Event, calendarName string) string {
	var body strings.Builder
	now := time.Now()
	for _, evt := range events {
		_ = writeEvent(&body, evt, now)
	}
	if body.Len() == 0 {
		return ""
	}

	var ics strings.Builder
	writeHeader(&ics, calendarName)
	ics.WriteString(body.String())
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeHeader(ics *strings.Builder, calendarName string) {
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Nearby Events//nearby-events//DE\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
	}
}

// writeEvent writes one VEVENT. Nothing is written when the date is unusable.
func writeEvent(ics *strings.Builder, evt event.Event, now time.Time) error {
	start := event.ParseDate(evt.Date)
	if start.IsZero() {
		return fmt.Errorf("%w: %q", ErrNoDate, evt.Date)
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@%s\r\n", evt.ID, uidDomain))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	if hasTimeOfDay(start) {
		// Listings carry local times without a zone, so they stay floating
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatLocalTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatLocalTime(start.Add(timedDuration))))
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(start)))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(start.AddDate(0, 0, 1))))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))
	if evt.Description != "" {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(evt.Description)))
	}
	if evt.City != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(evt.City)))
	}
	ics.WriteString(fmt.Sprintf("GEO:%.6f;%.6f\r\n", evt.Lat, evt.Lon))
	if tags := strings.Fields(evt.Tags); len(tags) > 0 {
		for i, tag := range tags {
			tags[i] = escapeICS(tag)
		}
		ics.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", strings.Join(tags, ",")))
	}
	if evt.HasTicket() {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
	return nil
}

func hasTimeOfDay(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats a floating (zone-less) iCalendar datetime
func formatLocalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
