package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pfrederiksen/nearby-events/internal/calendar"
	"github.com/pfrederiksen/nearby-events/internal/filter"
	"github.com/pfrederiksen/nearby-events/internal/finder"
	"github.com/pfrederiksen/nearby-events/internal/geo"
	"github.com/pfrederiksen/nearby-events/internal/logger"
	"github.com/pfrederiksen/nearby-events/internal/status"
	"github.com/pfrederiksen/nearby-events/internal/store"
)

// errBadRequest marks malformed query parameters
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Loaded bool   `json:"loaded"`
	Events int    `json:"events"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Loaded: s.store.Loaded(),
		Events: s.store.Count(),
	})
}

// handleEvents returns the matching events as a plain array
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	req, ref, err := s.parseSearch(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.finder.Search(r.Context(), ref, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Results)
}

// handleSearch returns the full outcome: lat/lon first, then city, then a text search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, ref, err := s.parseSearch(query)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var out finder.Outcome
	switch {
	case ref != nil:
		out, err = s.finder.Search(r.Context(), ref, req)
	case strings.TrimSpace(req.City) != "":
		out, err = s.finder.Locate(r.Context(), req)
	case strings.TrimSpace(req.Query) == "":
		out, err = s.finder.Initial(r.Context(), req.UpcomingOnly)
	default:
		out, err = s.finder.Search(r.Context(), nil, req)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if strings.TrimSpace(city) == "" {
		s.writeError(w, fmt.Errorf("%w: city is required", errBadRequest))
		return
	}

	events, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	loc, ok := filter.Locate(events, city)
	s.metrics.ObserveLocate(ok)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no match", Status: status.CityNotFound})
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// handleEvent returns one event as JSON, or as iCalendar when the ID ends in .ics
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	id, wantICS := strings.CutSuffix(id, ".ics")

	if _, err := s.store.Load(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	evt, err := s.store.ByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !wantICS {
		writeJSON(w, http.StatusOK, evt)
		return
	}

	ics, err := calendar.GenerateICS(evt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+sanitizeFilename(evt.ID)+".ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}

// parseSearch reads q, city, upcoming, radius and the lat/lon pair
func (s *Server) parseSearch(query url.Values) (finder.Request, *geo.Point, error) {
	req := finder.Request{
		Query:    query.Get("q"),
		City:     query.Get("city"),
		RadiusKm: s.radiusKm,
	}

	if raw := strings.TrimSpace(query.Get("radius")); raw != "" {
		radius, err := filter.ParseRadius(raw)
		if err != nil {
			return req, nil, err
		}
		req.RadiusKm = radius
	}

	if raw := query.Get("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			return req, nil, fmt.Errorf("%w: upcoming: %q is not a boolean", errBadRequest, raw)
		}
		req.UpcomingOnly = upcoming
	}

	ref, err := parseReference(query.Get("lat"), query.Get("lon"))
	return req, ref, err
}

// parseReference returns nil when neither coordinate is given
func parseReference(lat, lon string) (*geo.Point, error) {
	lat, lon = strings.TrimSpace(lat), strings.TrimSpace(lon)
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("%w: lat and lon must be given together", errBadRequest)
	}

	latVal, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat: %q", geo.ErrInvalidCoordinate, lat)
	}
	lonVal, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lon: %q", geo.ErrInvalidCoordinate, lon)
	}

	pt := geo.Point{Lat: latVal, Lon: lonVal}
	if err := pt.Validate(); err != nil {
		return nil, err
	}
	return &pt, nil
}

// writeError maps domain errors to status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, store.ErrLoad), errors.Is(err, store.ErrParse):
		code = http.StatusServiceUnavailable
		resp.Status = status.LoadFailed(err)
	case errors.Is(err, errBadRequest),
		errors.Is(err, filter.ErrInvalidRadius),
		errors.Is(err, geo.ErrInvalidCoordinate):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, calendar.ErrNoDate):
		code = http.StatusUnprocessableEntity
	default:
		logger.Error("Request failed", nil, err)
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response failed", logger.Fields{"error": err.Error()})
	}
}

// sanitizeFilename keeps letters, digits and dashes
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
