package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
	"github.com/pfrederiksen/nearby-events/internal/source"
)

var (
	// ErrLoad reports an unreachable source or a non-success response
	ErrLoad = errors.New("loading events failed")
	// ErrParse reports a listing that is not valid structured data
	ErrParse = errors.New("parsing events failed")
	// ErrNotLoaded is returned by readers before a successful Load
	ErrNotLoaded = errors.New("events not loaded")
	// ErrNotFound is returned by ByID for unknown identifiers
	ErrNotFound = errors.New("event not found")
)

// Store is the in-memory event listing
type Store struct {
	fetcher source.Fetcher
	metrics *metrics.Metrics

	loadMu sync.Mutex // serializes Load

	mu     sync.RWMutex
	events []event.Event
	index  map[string]int
	loaded bool
}

// New creates an empty Store reading from fetcher. m may be nil.
func New(fetcher source.Fetcher, m *metrics.Metrics) *Store {
	return &Store{
		fetcher: fetcher,
		metrics: m,
	}
}

// Load fetches and parses the listing. Once a load has succeeded, later
// calls return the same list without fetching again.
func (s *Store) Load(ctx context.Context) ([]event.Event, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if events, err := s.Events(); err == nil {
		return events, nil
	}

	start := time.Now()
	fields := logger.Fields{"source": s.fetcher.String()}

	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.reset()
		s.metrics.LoadFailed("load")
		logger.Error("Loading events failed", fields, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, s.fetcher, err)
	}

	events, err := source.Decode(doc)
	if err != nil {
		s.reset()
		s.metrics.LoadFailed("parse")
		logger.Error("Parsing events failed", fields, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, s.fetcher, err)
	}

	index := make(map[string]int, len(events))
	for i := range events {
		events[i].Normalize()
		if _, dup := index[events[i].ID]; !dup {
			index[events[i].ID] = i
		}
	}

	s.mu.Lock()
	s.events = events
	s.index = index
	s.loaded = true
	s.mu.Unlock()

	took := time.Since(start)
	s.metrics.ObserveLoad(len(events), took)
	fields["count"] = len(events)
	fields["took_ms"] = took.Milliseconds()
	logger.Info("Events loaded", fields)

	return copyEvents(events), nil
}

// Events returns a copy of the loaded listing in source order
func (s *Store) Events() ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return copyEvents(s.events), nil
}

// ByID returns the event with the given identifier
func (s *Store) ByID(id string) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return event.Event{}, ErrNotLoaded
	}
	i, ok := s.index[id]
	if !ok {
		return event.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.events[i], nil
}

// Count returns the number of loaded events, 0 before a successful load
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Loaded reports whether a load has succeeded
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Source describes where the listing comes from
func (s *Store) Source() string {
	return s.fetcher.String()
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.index = nil
	s.loaded = false
}

func copyEvents(events []event.Event) []event.Event {
	out := make([]event.Event, len(events))
	copy(out, events)
	return out
}
