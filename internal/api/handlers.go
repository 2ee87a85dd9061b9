package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/star/starfix/internal/httputil"
	"github.com/star/starfix/internal/metrics"
	"github.com/star/starfix/internal/observe"
	"github.com/star/starfix/internal/timescale"
)

// position is the body of the single-target routes. mag is absent for the
// Sun and Moon.
type position struct {
	RA   float64  `json:"ra"`
	Dec  float64  `json:"dec"`
	Dist float64  `json:"dist"`
	Mag  *float64 `json:"mag,omitempty"`
}

type brightStar struct {
	HIP  int     `json:"hip"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	Dist float64 `json:"dist"`
	Mag  float64 `json:"mag"`
}

func (s *Server) handleAriesGHA(w http.ResponseWriter, r *http.Request) {
	gha, err := s.ariesGHA(r)
	metrics.RecordObservation("aries-gha", err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, gha)
}

func (s *Server) ariesGHA(r *http.Request) (float64, error) {
	t, err := instant(r)
	if err != nil {
		return 0, err
	}
	return s.observer.AriesGHA(r.Context(), t)
}

func (s *Server) handleStar(w http.ResponseWriter, r *http.Request) {
	s.observeOne(w, r, observe.KindStar, r.PathValue("id"))
}

func (s *Server) handlePlanet(w http.ResponseWriter, r *http.Request) {
	s.observeOne(w, r, observe.KindPlanet, r.PathValue("name"))
}

func (s *Server) handleSun(w http.ResponseWriter, r *http.Request) {
	s.observeOne(w, r, observe.KindSun, "")
}

func (s *Server) handleMoon(w http.ResponseWriter, r *http.Request) {
	s.observeOne(w, r, observe.KindMoon, "")
}

func (s *Server) observeOne(w http.ResponseWriter, r *http.Request, kind observe.Kind, ident string) {
	res, err := s.single(r, kind, ident)
	metrics.RecordObservation(kind.String(), err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, position{
		RA:   res.RAHours,
		Dec:  res.DecDegrees,
		Dist: res.DistanceMeters,
		Mag:  res.Magnitude,
	})
}

func (s *Server) single(r *http.Request, kind observe.Kind, ident string) (observe.Result, error) {
	unix, err := parseFloat("unix", r.PathValue("unix"))
	if err != nil {
		return observe.Result{}, fmt.Errorf("%w: %w", observe.ErrInvalidTime, err)
	}
	return s.observer.ObserveAt(r.Context(), unix, kind, ident)
}

func (s *Server) handleBrightStars(w http.ResponseWriter, r *http.Request) {
	rows, err := s.brightStars(r)
	metrics.RecordObservation("bright-stars", err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	metrics.ObserveBatchSize(len(rows))

	out := make([]brightStar, len(rows))
	for i, row := range rows {
		out[i] = brightStar{
			HIP:  row.HIP,
			RA:   row.RAHours,
			Dec:  row.DecDegrees,
			Dist: row.DistanceMeters,
		}
		if row.Magnitude != nil {
			out[i].Mag = *row.Magnitude
		}
	}
	s.writeJSON(w, r, out)
}

func (s *Server) brightStars(r *http.Request) ([]observe.StarResult, error) {
	t, err := instant(r)
	if err != nil {
		return nil, err
	}
	minMag, err := parseFloat("minMag", r.PathValue("minMag"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", observe.ErrInvalidMagnitude, err)
	}
	return s.observer.ObserveBrightStars(r.Context(), t, minMag)
}

func instant(r *http.Request) (timescale.Instant, error) {
	unix, err := parseFloat("unix", r.PathValue("unix"))
	if err != nil {
		return timescale.Instant{}, fmt.Errorf("%w: %w", observe.ErrInvalidTime, err)
	}
	return timescale.Normalize(unix)
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q", name, raw)
	}
	return v, nil
}

// fail logs err and answers with the opaque 500 every client has always
// received, whatever went wrong.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("query failed",
		"component", "api",
		"path", r.URL.Path,
		"request_id", httputil.RequestIDFrom(r.Context()),
		"error", err,
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("Internal error"))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: encoding response: %w", observe.ErrComputation, err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}
