package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfix_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starfix_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	observationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starfix_observations_total",
			Help: "Observations computed, by target kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	brightStarBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starfix_bright_star_batch_size",
			Help:    "Number of stars observed per bright-star request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	catalogStars = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starfix_catalog_stars",
			Help: "Number of stars in the loaded catalog.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(observationsTotal)
	prometheus.MustRegister(brightStarBatchSize)
	prometheus.MustRegister(catalogStars)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordObservation counts one observation of kind ("star", "planet", "sun",
// "moon", "bright-stars", "aries-gha"). outcome is "ok" or "error".
func RecordObservation(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observationsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveBatchSize records the row count of a bright-star response.
func ObserveBatchSize(n int) {
	brightStarBatchSize.Observe(float64(n))
}

// SetCatalogSize publishes the loaded catalog size.
func SetCatalogSize(n int) {
	catalogStars.Set(float64(n))
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}

var exactRoutes = map[string]bool{
	"/":        true,
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// timeRoutes maps the segment after /time/{unix}/ onto its label suffix.
var timeRoutes = map[string]string{
	"aries-gha":    "/aries-gha",
	"hip":          "/hip/{id}",
	"planet":       "/planet/{name}",
	"sun":          "/sun",
	"moon":         "/moon",
	"bright-stars": "/bright-stars/{min_mag}",
}

// normalizeRoute collapses path parameters so label cardinality stays bounded.
// Anything that is not a served route becomes "other".
func normalizeRoute(path string) string {
	if exactRoutes[path] {
		return path
	}

	prefix := ""
	rest := path
	if strings.HasPrefix(rest, "/api/v1/") {
		prefix = "/api/v1"
		rest = strings.TrimPrefix(rest, "/api/v1")
	}

	parts := strings.Split(strings.TrimPrefix(rest, "/"), "/")
	if len(parts) < 3 || parts[0] != "time" || parts[1] == "" {
		return "other"
	}
	suffix, ok := timeRoutes[parts[2]]
	if !ok {
		return "other"
	}

	// Parameterised routes take exactly one more segment; fixed ones none.
	wantParts := 3
	if strings.Contains(suffix, "{") {
		wantParts = 4
	}
	if len(parts) != wantParts || parts[len(parts)-1] == "" {
		return "other"
	}
	return prefix + "/time/{unix}" + suffix
}
