package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/nearby-events/internal/event"
	"github.com/pfrederiksen/nearby-events/internal/filter"
	"github.com/pfrederiksen/nearby-events/internal/geo"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/metrics"
	"github.com/pfrederiksen/nearby-events/internal/status"
	"github.com/pfrederiksen/nearby-events/internal/store"
)

// Default timeouts for acquiring the device position
const (
	DefaultNearMeTimeout = 10 * time.Second
	DefaultSubmitTimeout = 8 * time.Second
)

// DefaultInitialLimit is the number of events in the landing listing
const DefaultInitialLimit = 12

// Mode describes how an outcome was produced
type Mode string

const (
	ModeInitial Mode = "initial"
	ModeNearby  Mode = metrics.ModeNearby
	ModeCity    Mode = metrics.ModeCity
	ModeGlobal  Mode = metrics.ModeGlobal
	ModeNoMatch Mode = "no_match"
)

// Config tunes a Finder. Zero fields use the defaults.
type Config struct {
	NearMeTimeout time.Duration
	SubmitTimeout time.Duration
	InitialLimit  int
}

// Request carries the user's search input
type Request struct {
	Query        string
	City         string // fallback city or postal code
	RadiusKm     float64
	UpcomingOnly bool
}

// Outcome is the result of one search flow
type Outcome struct {
	Mode     Mode             `json:"mode"`
	Results  []filter.Result  `json:"results"`
	Location *filter.Location `json:"location,omitempty"` // reference point, nil for text-only searches
	Status   string           `json:"status"`
}

// Finder runs search flows against a store
type Finder struct {
	store    *store.Store
	position PositionProvider
	metrics  *metrics.Metrics
	cfg      Config
	seq      Sequencer
}

// New creates a Finder. position may be nil when no device position is available.
func New(s *store.Store, position PositionProvider, m *metrics.Metrics, cfg Config) *Finder {
	if cfg.NearMeTimeout <= 0 {
		cfg.NearMeTimeout = DefaultNearMeTimeout
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.InitialLimit <= 0 {
		cfg.InitialLimit = DefaultInitialLimit
	}
	return &Finder{
		store:    s,
		position: position,
		metrics:  m,
		cfg:      cfg,
	}
}

// Initial returns the landing listing: the first events in listing order
func (f *Finder) Initial(ctx context.Context, upcomingOnly bool) (Outcome, error) {
	events, err := f.store.Load(ctx)
	if err != nil {
		return Outcome{Status: status.LoadFailed(err)}, err
	}

	results := make([]filter.Result, 0, f.cfg.InitialLimit)
	for _, evt := range events {
		if len(results) == f.cfg.InitialLimit {
			break
		}
		if upcomingOnly && !evt.IsUpcoming() {
			continue
		}
		results = append(results, filter.Result{Event: evt})
	}

	return Outcome{Mode: ModeInitial, Results: results, Status: status.Initial}, nil
}

// NearMe searches around the device position. On failure the caller should
// offer the city fallback (UseCity).
func (f *Finder) NearMe(ctx context.Context, req Request) (Outcome, error) {
	ticket := f.seq.Next()

	events, err := f.store.Load(ctx)
	if err != nil {
		return Outcome{Status: status.LoadFailed(err)}, err
	}
	if f.position == nil {
		return Outcome{Status: status.NoGeolocation}, fmt.Errorf("%w: no position source", ErrLocationUnavailable)
	}

	pt, err := f.devicePosition(ctx, f.cfg.NearMeTimeout)
	if err != nil {
		if staleErr := ticket.Check(); staleErr != nil {
			return Outcome{}, staleErr
		}
		return Outcome{Status: status.LocationFailed}, err
	}
	if err := ticket.Check(); err != nil {
		return Outcome{}, err
	}

	return f.nearby(events, &filter.Location{Point: pt}, ModeNearby, req)
}

// UseCity searches around the first event whose city contains req.City.
// An unknown city is not an error: the outcome has ModeNoMatch.
func (f *Finder) UseCity(ctx context.Context, req Request) (Outcome, error) {
	ticket := f.seq.Next()

	out, err := f.Locate(ctx, req)
	if staleErr := ticket.Check(); staleErr != nil {
		return Outcome{}, staleErr
	}
	return out, err
}

// Locate is UseCity without request sequencing, for callers where every
// request stands alone (such as HTTP handlers).
func (f *Finder) Locate(ctx context.Context, req Request) (Outcome, error) {
	events, err := f.store.Load(ctx)
	if err != nil {
		return Outcome{Status: status.LoadFailed(err)}, err
	}

	loc, ok := filter.Locate(events, req.City)
	f.metrics.ObserveLocate(ok)
	if !ok {
		return Outcome{Mode: ModeNoMatch, Results: []filter.Result{}, Status: status.CityNotFound}, nil
	}

	logger.Debug("Using city position", logger.Fields{"city": loc.City, "position": loc.Point.String()})
	return f.nearby(events, &loc, ModeCity, req)
}

// Submit runs the search form flow: device position first, then the city
// fallback when one was given, then a global text search.
func (f *Finder) Submit(ctx context.Context, req Request) (Outcome, error) {
	ticket := f.seq.Next()

	events, err := f.store.Load(ctx)
	if err != nil {
		return Outcome{Status: status.LoadFailed(err)}, err
	}

	if f.position == nil {
		out, err := f.global(events, req)
		out.Status = status.Local(len(out.Results))
		return out, err
	}

	pt, err := f.devicePosition(ctx, f.cfg.SubmitTimeout)
	if staleErr := ticket.Check(); staleErr != nil {
		return Outcome{}, staleErr
	}
	if err == nil {
		return f.nearby(events, &filter.Location{Point: pt}, ModeNearby, req)
	}

	logger.Debug("Device position failed, falling back", logger.Fields{"city": req.City, "reason": err.Error()})

	if req.City != "" {
		loc, ok := filter.Locate(events, req.City)
		f.metrics.ObserveLocate(ok)
		if ok {
			return f.nearby(events, &loc, ModeCity, req)
		}
	}
	return f.global(events, req)
}

// Search runs a single search against an explicit reference point, or a
// global text search when ref is nil.
func (f *Finder) Search(ctx context.Context, ref *geo.Point, req Request) (Outcome, error) {
	events, err := f.store.Load(ctx)
	if err != nil {
		return Outcome{Status: status.LoadFailed(err)}, err
	}
	if ref == nil {
		return f.global(events, req)
	}
	return f.nearby(events, &filter.Location{Point: *ref}, ModeNearby, req)
}

func (f *Finder) nearby(events []event.Event, loc *filter.Location, mode Mode, req Request) (Outcome, error) {
	ref := loc.Point
	results, err := filter.Search(events, filter.Query{
		Reference:    &ref,
		Text:         req.Query,
		RadiusKm:     req.RadiusKm,
		UpcomingOnly: req.UpcomingOnly,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("searching near %s: %w", ref, err)
	}

	f.metrics.ObserveSearch(string(mode), len(results))
	return Outcome{
		Mode:     mode,
		Results:  results,
		Location: loc,
		Status:   status.Nearby(len(results), req.RadiusKm),
	}, nil
}

func (f *Finder) global(events []event.Event, req Request) (Outcome, error) {
	results, err := filter.Search(events, filter.Query{
		Text:         req.Query,
		UpcomingOnly: req.UpcomingOnly,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("searching events: %w", err)
	}

	f.metrics.ObserveSearch(string(ModeGlobal), len(results))
	return Outcome{
		Mode:    ModeGlobal,
		Results: results,
		Status:  status.Global(len(results)),
	}, nil
}

// devicePosition asks the provider for a position within timeout. Errors
// always wrap ErrLocationDenied or ErrLocationUnavailable.
func (f *Finder) devicePosition(ctx context.Context, timeout time.Duration) (geo.Point, error) {
	if f.position == nil {
		return geo.Point{}, fmt.Errorf("%w: no position source", ErrLocationUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pt, err := f.position.Position(ctx)
	if err != nil {
		if errors.Is(err, ErrLocationDenied) || errors.Is(err, ErrLocationUnavailable) {
			return geo.Point{}, err
		}
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	if err := pt.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	return pt, nil
}
