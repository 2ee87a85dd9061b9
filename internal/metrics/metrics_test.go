package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},

		// Parameterized routes collapse to one label.
		{"/time/1700000000/aries-gha", "/time/{unix}/aries-gha"},
		{"/time/1700000000.5/sun", "/time/{unix}/sun"},
		{"/time/0/moon", "/time/{unix}/moon"},
		{"/time/1700000000/hip/32349", "/time/{unix}/hip/{id}"},
		{"/time/1700000000/planet/mars", "/time/{unix}/planet/{name}"},
		{"/time/1700000000/bright-stars/2.5", "/time/{unix}/bright-stars/{min_mag}"},
		{"/api/v1/time/1700000000/hip/1", "/api/v1/time/{unix}/hip/{id}"},
		{"/api/v1/time/1700000000/aries-gha", "/api/v1/time/{unix}/aries-gha"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/time/1/sun", "other"},
		{"/time/1/comet/halley", "other"},
		{"/time/1/hip", "other"},
		{"/time/1/sun/extra", "other"},
		{"/time//sun", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that 100 unique HIP numbers and instants
// produce exactly 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		label := normalizeRoute(fmt.Sprintf("/time/%d/hip/%d", 1700000000+i, i+1))
		seen[label] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for parameterized paths, got %d: %v", len(seen), seen)
	}
}

func TestMiddlewareCountsNormalizedRoute(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/time/{unix}/planet/{name}", "GET", "500"))
	for _, name := range []string{"pluto", "vulcan", "nibiru"} {
		req := httptest.NewRequest(http.MethodGet, "/time/1700000000/planet/"+name, nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/time/{unix}/planet/{name}", "GET", "500"))

	if after-before != 3 {
		t.Errorf("counter delta = %v, want 3", after-before)
	}
}

func TestRecordObservation(t *testing.T) {
	okBefore := testutil.ToFloat64(observationsTotal.WithLabelValues("moon", "ok"))
	errBefore := testutil.ToFloat64(observationsTotal.WithLabelValues("moon", "error"))

	RecordObservation("moon", nil)
	RecordObservation("moon", errors.New("boom"))
	RecordObservation("moon", nil)

	if d := testutil.ToFloat64(observationsTotal.WithLabelValues("moon", "ok")) - okBefore; d != 2 {
		t.Errorf("ok delta = %v, want 2", d)
	}
	if d := testutil.ToFloat64(observationsTotal.WithLabelValues("moon", "error")) - errBefore; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
}

func TestCatalogGauge(t *testing.T) {
	SetCatalogSize(117955)
	if got := testutil.ToFloat64(catalogStars); got != 117955 {
		t.Errorf("catalog gauge = %v, want 117955", got)
	}

	ObserveBatchSize(42)
	expected := `
# HELP starfix_catalog_stars Number of stars in the loaded catalog.
# TYPE starfix_catalog_stars gauge
starfix_catalog_stars 117955
`
	if err := testutil.CollectAndCompare(catalogStars, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}
