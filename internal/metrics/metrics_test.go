package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observations(t *testing.T) {
	m := New()

	m.ObserveLoad(42, 150*time.Millisecond)
	if got := testutil.ToFloat64(m.eventsLoaded); got != 42 {
		t.Errorf("loaded gauge = %v, want 42", got)
	}

	m.LoadFailed("parse")
	m.LoadFailed("parse")
	if got := testutil.ToFloat64(m.loadFailures.WithLabelValues("parse")); got != 2 {
		t.Errorf("parse failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.eventsLoaded); got != 0 {
		t.Errorf("loaded gauge after failure = %v, want 0", got)
	}

	m.ObserveSearch(ModeNearby, 3)
	m.ObserveSearch(ModeNearby, 0)
	m.ObserveSearch(ModeGlobal, 7)
	if got := testutil.ToFloat64(m.searches.WithLabelValues(ModeNearby)); got != 2 {
		t.Errorf("nearby searches = %v, want 2", got)
	}

	m.ObserveLocate(true)
	m.ObserveLocate(false)
	m.ObserveLocate(false)
	if got := testutil.ToFloat64(m.locates.WithLabelValues("no_match")); got != 2 {
		t.Errorf("no_match locates = %v, want 2", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// Must not panic
	m.ObserveLoad(1, time.Second)
	m.LoadFailed("load")
	m.ObserveSearch(ModeCity, 1)
	m.ObserveLocate(true)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSearch(ModeCity, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `nearby_events_searches_total{mode="city"} 1`) {
		t.Errorf("expected searches counter in exposition, got:\n%s", body)
	}
}
