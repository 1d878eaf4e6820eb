package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFavoriteCounters(t *testing.T) {
	m := New()
	m.FavoriteToggled(true)
	m.FavoriteToggled(true)
	m.FavoriteToggled(false)
	m.FavoritesReset()

	if got := testutil.ToFloat64(m.favoriteToggles.WithLabelValues("add")); got != 2 {
		t.Errorf("toggles(add) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.favoriteToggles.WithLabelValues("remove")); got != 1 {
		t.Errorf("toggles(remove) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.favoriteResets); got != 1 {
		t.Errorf("resets = %v, want 1", got)
	}
}

func TestGaugeAndCounters(t *testing.T) {
	m := New()
	m.SetSessions(3)
	m.CacheLookup(CacheHit)
	m.CacheLookup(CacheMiss)
	m.CacheLookup(CacheMiss)
	m.BoardReloaded(nil)
	m.BoardReloaded(errors.New("boom"))

	if got := testutil.ToFloat64(m.sessionsActive); got != 3 {
		t.Errorf("sessions = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.cacheRequests.WithLabelValues(CacheMiss)); got != 2 {
		t.Errorf("cache(miss) = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.boardReloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("reloads(failure) = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.FavoriteToggled(true)
	m.FavoritesReset()
	m.SetSessions(1)
	m.CacheLookup(CacheHit)
	m.BoardReloaded(nil)
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/app/discussions", 200, 5*time.Millisecond)
	m.FavoriteToggled(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`agora_favorite_toggles_total{action="add"} 1`,
		`agora_http_request_duration_seconds_count{method="GET",route="/app/discussions",status="200"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
