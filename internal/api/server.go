package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/star/starfix/internal/health"
	"github.com/star/starfix/internal/httputil"
	"github.com/star/starfix/internal/metrics"
	"github.com/star/starfix/internal/observe"
	"github.com/star/starfix/internal/timescale"
)

// Observer is the query surface the handlers call into. *observe.Pipeline
// satisfies it.
type Observer interface {
	ObserveAt(ctx context.Context, unix float64, kind observe.Kind, ident string) (observe.Result, error)
	ObserveBrightStars(ctx context.Context, t timescale.Instant, minMag float64) ([]observe.StarResult, error)
	AriesGHA(ctx context.Context, t timescale.Instant) (float64, error)
}

// Config holds the HTTP listener settings.
type Config struct {
	Addr       string
	TrustProxy bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	observer   Observer
	logger     *slog.Logger
}

// routePrefixes are the mount points of the query routes: the bare paths and
// the same paths under /api/v1.
var routePrefixes = []string{"", "/api/v1"}

// NewServer creates a configured HTTP server. readiness may be nil.
func NewServer(cfg Config, observer Observer, readiness *health.Readiness, logger *slog.Logger) *Server {
	s := &Server{observer: observer, logger: logger}
	if readiness == nil {
		readiness = health.NewReadiness()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", readiness.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	for _, p := range routePrefixes {
		mux.HandleFunc("GET "+p+"/time/{unix}/aries-gha", s.handleAriesGHA)
		mux.HandleFunc("GET "+p+"/time/{unix}/hip/{id}", s.handleStar)
		mux.HandleFunc("GET "+p+"/time/{unix}/planet/{name}", s.handlePlanet)
		mux.HandleFunc("GET "+p+"/time/{unix}/sun", s.handleSun)
		mux.HandleFunc("GET "+p+"/time/{unix}/moon", s.handleMoon)
		mux.HandleFunc("GET "+p+"/time/{unix}/bright-stars/{minMag}", s.handleBrightStars)
	}

	// Build middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// quietPath reports the health, readiness and metrics paths, which log at DEBUG.
func quietPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := httputil.RequestID(r)
			w.Header().Set(httputil.RequestIDHeader, id)
			r = r.WithContext(httputil.WithRequestID(r.Context(), id))
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if quietPath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
				"request_id", id,
			)
		})
	}
}
