package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByRelevance SortOrder = "" // as returned by the search
	SortByDistance  SortOrder = "distance"
	SortByDate      SortOrder = "date"
	SortByTitle     SortOrder = "title"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortByRelevance, SortByDistance, SortByDate, SortByTitle:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'distance', 'date' or 'title')", s)
	}
}

// sortResults reorders results in place. Sorting is stable, so equal keys
// keep the search order.
func sortResults(results []filter.Result, order SortOrder) {
	switch order {
	case SortByDistance:
		sort.SliceStable(results, func(i, j int) bool {
			return compareByDistance(results[i], results[j])
		})
	case SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return compareByDate(results[i].Event, results[j].Event)
		})
	case SortByTitle:
		sort.SliceStable(results, func(i, j int) bool {
			ti, tj := strings.ToLower(results[i].Event.Title), strings.ToLower(results[j].Event.Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by date
			return compareByDate(results[i].Event, results[j].Event)
		})
	}
}

// compareByDistance puts results without a distance last
func compareByDistance(i, j filter.Result) bool {
	switch {
	case i.Distance != nil && j.Distance != nil:
		return *i.Distance < *j.Distance
	case i.Distance != nil:
		return true
	default:
		return false
	}
}

// compareByDate compares two events by their date
// Returns true if event i should come before event j
func compareByDate(i, j event.Event) bool {
	dateI := event.ParseDate(i.Date)
	dateJ := event.ParseDate(j.Date)

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if !dateI.IsZero() {
		return true
	}
	return false
}
