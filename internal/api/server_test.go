package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
	"github.com/star/starfix/internal/health"
	"github.com/star/starfix/internal/httputil"
	"github.com/star/starfix/internal/observe"
	"github.com/star/starfix/internal/timescale"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func ptr(f float64) *float64 { return &f }

// stubObserver answers with fixed values so response bodies are stable.
type stubObserver struct {
	bright []observe.StarResult
}

func (s *stubObserver) ObserveAt(ctx context.Context, unix float64, kind observe.Kind, ident string) (observe.Result, error) {
	if _, err := timescale.Normalize(unix); err != nil {
		return observe.Result{}, err
	}
	switch {
	case kind == observe.KindStar && ident == "32349":
		return observe.Result{RAHours: 6.75, DecDegrees: -16.75, DistanceMeters: 8.125e16, Magnitude: ptr(-1.44)}, nil
	case kind == observe.KindPlanet && ident == "mars":
		return observe.Result{RAHours: 3.5, DecDegrees: 18.25, DistanceMeters: 1.5e11, Magnitude: ptr(1.25)}, nil
	case kind == observe.KindSun:
		return observe.Result{RAHours: 12, DecDegrees: -0.5, DistanceMeters: 1.496e11}, nil
	case kind == observe.KindMoon:
		return observe.Result{RAHours: 20.5, DecDegrees: -25, DistanceMeters: 3.844e8}, nil
	}
	return observe.Result{}, fmt.Errorf("%w: %v %q", observe.ErrUnknownBody, kind, ident)
}

func (s *stubObserver) ObserveBrightStars(ctx context.Context, t timescale.Instant, minMag float64) ([]observe.StarResult, error) {
	var out []observe.StarResult
	for _, r := range s.bright {
		if *r.Magnitude <= minMag {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubObserver) AriesGHA(ctx context.Context, t timescale.Instant) (float64, error) {
	return 123.5, nil
}

func newStubServer() *Server {
	obs := &stubObserver{bright: []observe.StarResult{
		{HIP: 32349, Result: observe.Result{RAHours: 6.75, DecDegrees: -16.75, DistanceMeters: 8.125e16, Magnitude: ptr(-1.44)}},
		{HIP: 30438, Result: observe.Result{RAHours: 6.4, DecDegrees: -52.75, DistanceMeters: 9.25e17, Magnitude: ptr(-0.62)}},
	}}
	return NewServer(Config{Addr: ":0"}, obs, nil, testLogger())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestQueryRoutesGolden(t *testing.T) {
	h := newStubServer().Handler()
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	tests := []struct {
		name string
		path string
	}{
		{"aries_gha", "/time/1700000000/aries-gha"},
		{"star", "/time/1700000000/hip/32349"},
		{"planet", "/time/1700000000/planet/mars"},
		{"sun", "/time/1700000000/sun"},
		{"moon", "/time/1700000000/moon"},
		{"bright_stars", "/time/1700000000/bright-stars/0"},
		{"bright_stars_empty", "/time/1700000000/bright-stars/-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			g.Assert(t, tt.name, w.Body.Bytes())

			// The versioned mount serves identical bodies.
			v1 := get(t, h, "/api/v1"+tt.path)
			require.Equal(t, http.StatusOK, v1.Code)
			assert.Equal(t, w.Body.String(), v1.Body.String())
		})
	}
}

func TestQueryFailuresAreOpaque(t *testing.T) {
	h := newStubServer().Handler()

	paths := []string{
		"/time/abc/sun",
		"/time/NaN/moon",
		"/time/1e300/aries-gha",
		"/time/1700000000/hip/abc",
		"/time/1700000000/hip/-3",
		"/time/1700000000/hip/999999",
		"/time/1700000000/planet/pluto",
		"/time/1700000000/bright-stars/bright",
		"/time/nope/bright-stars/2",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			w := get(t, h, p)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "Internal error", w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h := newStubServer().Handler()
	for _, p := range []string{"/time/1700000000/comet/halley", "/sun", "/api/v2/time/0/sun"} {
		assert.Equal(t, http.StatusNotFound, get(t, h, p).Code, p)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newStubServer().Handler()
	req := httptest.NewRequest(http.MethodPost, "/time/1700000000/sun", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	h := newStubServer().Handler()

	req := httptest.NewRequest(http.MethodGet, "/time/0/sun", nil)
	req.Header.Set(httputil.RequestIDHeader, "trace-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(httputil.RequestIDHeader))

	w = get(t, h, "/time/0/sun")
	assert.Len(t, w.Header().Get(httputil.RequestIDHeader), 36)
}

func TestReadyzChecks(t *testing.T) {
	readiness := health.NewReadiness()
	ready := false
	readiness.Register("catalog", func() error {
		if !ready {
			return fmt.Errorf("loading")
		}
		return nil
	})
	h := NewServer(Config{}, &stubObserver{}, readiness, testLogger()).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/readyz").Code)
	ready = true
	assert.Equal(t, http.StatusOK, get(t, h, "/readyz").Code)

	m := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "starfix_http_requests_total")
}

func TestServerTimeouts(t *testing.T) {
	hs := newStubServer().HTTPServer()
	assert.NotZero(t, hs.ReadTimeout)
	assert.NotZero(t, hs.ReadHeaderTimeout)
	assert.NotZero(t, hs.WriteTimeout)
	assert.NotZero(t, hs.IdleTimeout)
}

// TestEndToEnd runs the full pipeline over the sample catalog and the
// built-in ephemeris dataset.
func TestEndToEnd(t *testing.T) {
	f, err := os.Open("../catalog/testdata/hip_sample.dat")
	require.NoError(t, err)
	defer f.Close()
	stars, err := catalog.Parse(f, testLogger())
	require.NoError(t, err)

	ds, err := ephemeris.DefaultDataset()
	require.NoError(t, err)
	eph := ephemeris.New(ds, ephemeris.Config{Workers: 2}, testLogger())
	pipeline := observe.New(catalog.New(stars), eph, testLogger())
	h := NewServer(Config{}, pipeline, nil, testLogger()).Handler()

	t.Run("sirius", func(t *testing.T) {
		w := get(t, h, "/time/1700000000/hip/32349")
		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]float64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.InDelta(t, 6.77, got["ra"], 0.05)
		assert.InDelta(t, -16.75, got["dec"], 0.1)
		assert.InDelta(t, -1.44, got["mag"], 1e-9)
		assert.InDelta(t, 8.14e16, got["dist"], 0.01e16)
	})

	t.Run("jupiter has magnitude", func(t *testing.T) {
		w := get(t, h, "/time/1700000000/planet/Jupiter")
		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]float64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Contains(t, got, "mag")
		assert.Less(t, got["mag"], -1.5)
	})

	t.Run("moon has no magnitude", func(t *testing.T) {
		w := get(t, h, "/time/1700000000/moon")
		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.NotContains(t, got, "mag")
		assert.Len(t, got, 3)
	})

	t.Run("bright stars follow catalog order", func(t *testing.T) {
		w := get(t, h, "/time/1700000000/bright-stars/2")
		require.Equal(t, http.StatusOK, w.Code)
		var rows []struct {
			HIP int     `json:"hip"`
			Mag float64 `json:"mag"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		hips := make([]int, len(rows))
		for i, r := range rows {
			hips[i] = r.HIP
			assert.LessOrEqual(t, r.Mag, 2.0)
		}
		assert.Equal(t, []int{11767, 32349, 91262}, hips)
	})

	t.Run("out of ephemeris range", func(t *testing.T) {
		w := get(t, h, "/time/4102444800/sun")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
