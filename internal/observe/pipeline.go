// Package observe turns (instant, target) requests into apparent geocentric
// coordinates and magnitudes.
package observe

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/star/starfix/internal/astro"
	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
	"github.com/star/starfix/internal/timescale"
)

// Oracle is the numerical engine behind the pipeline.
type Oracle interface {
	BodySet
	Observe(t timescale.Instant, name string) (ephemeris.Astrometric, error)
	RADec(a ephemeris.Astrometric) ephemeris.Coordinate
	PlanetaryMagnitude(a ephemeris.Astrometric) (float64, error)
	ObserveStars(ctx context.Context, t timescale.Instant, stars []ephemeris.StarSpec) (ephemeris.Coordinates, error)
	SiderealTime(t timescale.Instant) (float64, error)
}

// Result is one apparent position. Magnitude is nil for the Sun and Moon.
type Result struct {
	RAHours        float64
	DecDegrees     float64
	DistanceMeters float64
	Magnitude      *float64
}

// StarResult is a bright-star batch row.
type StarResult struct {
	HIP int
	Result
}

// Pipeline is the shared, read-only observation context. It is safe for
// concurrent use.
type Pipeline struct {
	catalog  StarTable
	oracle   Oracle
	resolver *Resolver
	logger   *slog.Logger
}

// New creates a Pipeline.
func New(c StarTable, oracle Oracle, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		catalog:  c,
		oracle:   oracle,
		resolver: NewResolver(c, oracle),
		logger:   logger,
	}
}

// Resolver returns the pipeline's body resolver.
func (p *Pipeline) Resolver() *Resolver { return p.resolver }

// ObserveAt normalises unix, resolves (kind, ident) and observes the target.
func (p *Pipeline) ObserveAt(ctx context.Context, unix float64, kind Kind, ident string) (Result, error) {
	t, err := timescale.Normalize(unix)
	if err != nil {
		return Result{}, err
	}
	target, err := p.resolver.Resolve(kind, ident)
	if err != nil {
		return Result{}, err
	}
	return p.Observe(ctx, t, target)
}

// Observe computes the apparent position and magnitude of target at t.
func (p *Pipeline) Observe(ctx context.Context, t timescale.Instant, target Target) (Result, error) {
	switch target.Kind {
	case KindStar:
		return p.observeStar(ctx, t, target)
	case KindPlanet, KindSun, KindMoon:
		return p.observeBody(t, target)
	}
	return Result{}, fmt.Errorf("%w: unsupported target kind %v", ErrComputation, target.Kind)
}

func (p *Pipeline) observeStar(ctx context.Context, t timescale.Instant, target Target) (Result, error) {
	if target.Star == nil {
		return Result{}, fmt.Errorf("%w: star target without catalog entry", ErrComputation)
	}
	coords, err := p.oracle.ObserveStars(ctx, t, []ephemeris.StarSpec{starSpec(*target.Star)})
	if err != nil {
		return Result{}, fmt.Errorf("%w: observing %s: %w", ErrComputation, target, err)
	}
	if coords.Len() != 1 {
		return Result{}, fmt.Errorf("%w: oracle returned %d rows for one star", ErrComputation, coords.Len())
	}
	mag := starMagnitude(*target.Star)
	return checkedResult(target, coords.At(0), &mag)
}

func (p *Pipeline) observeBody(t timescale.Instant, target Target) (Result, error) {
	a, err := p.oracle.Observe(t, target.Name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: observing %s: %w", ErrComputation, target, err)
	}
	mag, err := p.magnitude(target, a)
	if err != nil {
		return Result{}, err
	}
	return checkedResult(target, p.oracle.RADec(a), mag)
}

// ObserveBrightStars observes every catalog star with magnitude <= minMag.
// Rows follow catalog order; an empty selection yields an empty slice.
func (p *Pipeline) ObserveBrightStars(ctx context.Context, t timescale.Instant, minMag float64) ([]StarResult, error) {
	if math.IsNaN(minMag) {
		return nil, ErrInvalidMagnitude
	}

	// One materialised selection feeds both the batch and the read-back.
	stars := p.catalog.Brighter(minMag)
	specs := make([]ephemeris.StarSpec, len(stars))
	for i, s := range stars {
		specs[i] = starSpec(s)
	}

	coords, err := p.oracle.ObserveStars(ctx, t, specs)
	if err != nil {
		return nil, fmt.Errorf("%w: bright-star batch of %d: %w", ErrComputation, len(stars), err)
	}
	if coords.Len() != len(stars) || len(coords.DecDegrees) != len(stars) || len(coords.DistanceMeters) != len(stars) {
		return nil, fmt.Errorf("%w: batch returned %d rows for %d stars", ErrComputation, coords.Len(), len(stars))
	}

	out := make([]StarResult, len(stars))
	for i, s := range stars {
		mag := starMagnitude(s)
		target := Target{Kind: KindStar, Star: &stars[i]}
		r, err := checkedResult(target, coords.At(i), &mag)
		if err != nil {
			return nil, err
		}
		out[i] = StarResult{HIP: s.HIP, Result: r}
	}

	p.logger.Debug("bright-star batch",
		"min_mag", minMag,
		"stars", len(out),
		"instant", t.String(),
	)
	return out, nil
}

// AriesGHA returns the Greenwich hour angle of the First Point of Aries in
// degrees [0, 360), evaluated on the Earth-rotation time scale.
func (p *Pipeline) AriesGHA(ctx context.Context, t timescale.Instant) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	gast, err := p.oracle.SiderealTime(t)
	if err != nil {
		return 0, fmt.Errorf("%w: sidereal time: %w", ErrComputation, err)
	}
	if math.IsNaN(gast) || math.IsInf(gast, 0) {
		return 0, fmt.Errorf("%w: sidereal time is not finite", ErrComputation)
	}
	return astro.NormalizeDegrees(15 * gast), nil
}

func starSpec(s catalog.Star) ephemeris.StarSpec {
	return ephemeris.StarSpec{
		RADegrees:       s.RADegrees,
		DecDegrees:      s.DecDegrees,
		ParallaxMas:     s.ParallaxMas,
		PMRAMasPerYear:  s.PMRAMasPerYear,
		PMDecMasPerYear: s.PMDecMasPerYear,
	}
}

func checkedResult(target Target, c ephemeris.Coordinate, mag *float64) (Result, error) {
	if !finite(c.RAHours) || !finite(c.DecDegrees) || !finite(c.DistanceMeters) || c.DistanceMeters < 0 {
		return Result{}, fmt.Errorf("%w: invalid coordinates for %s: %+v", ErrComputation, target, c)
	}
	return Result{
		RAHours:        c.RAHours,
		DecDegrees:     c.DecDegrees,
		DistanceMeters: c.DistanceMeters,
		Magnitude:      mag,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
