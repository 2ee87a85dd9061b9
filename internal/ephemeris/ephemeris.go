// Package ephemeris positions solar system bodies and catalog stars as seen
// from the Earth's centre.
//
// Planet positions come from mean Keplerian elements, the Moon from a
// truncated ELP-2000/82 series. Coordinates are astrometric (light-time
// corrected, no aberration) and are reported on the true equator and
// equinox of date.
package ephemeris

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"

	"github.com/star/starfix/internal/astro"
	"github.com/star/starfix/internal/timescale"
)

const lightTimeIterations = 3

// Config holds ephemeris tuning options.
type Config struct {
	Workers int // goroutines for star batches (default: runtime.NumCPU())
}

// Ephemeris answers position queries against one immutable dataset. It is
// safe for concurrent use.
type Ephemeris struct {
	ds      *Dataset
	sources map[string]source
	names   []string
	workers int
	logger  *slog.Logger
}

// New builds an Ephemeris over ds.
func New(ds *Dataset, cfg Config, logger *slog.Logger) *Ephemeris {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sources := buildSources(ds)
	e := &Ephemeris{
		ds:      ds,
		sources: sources,
		names:   names(sources),
		workers: workers,
		logger:  logger,
	}
	from, to := ds.Span()
	logger.Info("ephemeris ready",
		"dataset", ds.Name,
		"bodies", len(e.names),
		"valid_from", from.Format("2006-01-02"),
		"valid_to", to.Format("2006-01-02"),
		"workers", workers,
	)
	return e
}

// Dataset returns the dataset the ephemeris was built from.
func (e *Ephemeris) Dataset() *Dataset { return e.ds }

// Names returns every recognised body name, sorted.
func (e *Ephemeris) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Has reports whether name (case-insensitive) is a recognised body.
func (e *Ephemeris) Has(name string) bool {
	_, ok := e.sources[canonical(strings.ToLower(name))]
	return ok
}

// Astrometric is the light-time corrected geometry of one body seen from
// the geocentre.
type Astrometric struct {
	Target      string
	Instant     timescale.Instant
	Position    astro.Vec3 // geocentric, J2000 equatorial, AU
	Observer    astro.Vec3 // Earth heliocentric at the instant, AU
	TargetHelio astro.Vec3 // target heliocentric at the emission time, AU
	LightTime   float64    // days
}

// Coordinate is a position on the true equator and equinox of date.
type Coordinate struct {
	RAHours        float64
	DecDegrees     float64
	DistanceMeters float64
}

// Observe returns the astrometric position of the named body at t.
func (e *Ephemeris) Observe(t timescale.Instant, name string) (Astrometric, error) {
	canon := canonical(strings.ToLower(name))
	src, ok := e.sources[canon]
	if !ok {
		return Astrometric{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	if err := e.checkRange(t); err != nil {
		return Astrometric{}, err
	}

	T := t.TDB().Centuries()
	earth := e.sources[Earth].position(T, e.ds.EarthMoonMassRatio)

	// Iterate on the emission time; converges well below a microsecond.
	var target, vec astro.Vec3
	var lt float64
	for i := 0; i < lightTimeIterations; i++ {
		target = src.position(T-lt/astro.DaysPerCentury, e.ds.EarthMoonMassRatio)
		vec = target.Sub(earth)
		lt = vec.Norm() / astro.LightSpeedAUPerDay
	}
	if vec.Norm() == 0 {
		return Astrometric{}, fmt.Errorf("%w: %q observed from the geocentre", ErrDegenerate, name)
	}
	if !vec.IsFinite() {
		return Astrometric{}, fmt.Errorf("%w: non-finite position for %q", ErrDegenerate, name)
	}

	return Astrometric{
		Target:      canon,
		Instant:     t,
		Position:    vec,
		Observer:    earth,
		TargetHelio: target,
		LightTime:   lt,
	}, nil
}

// RADec rotates the astrometric vector onto the true equator and equinox of
// date.
func (a Astrometric) RADec() Coordinate {
	pn := astro.PrecessionNutation(a.Instant.TT().Centuries())
	return toCoordinate(pn, a.Position)
}

func toCoordinate(pn astro.Mat3, v astro.Vec3) Coordinate {
	s := astro.ToSpherical(pn.Apply(v))
	return Coordinate{
		RAHours:        s.RAHours,
		DecDegrees:     s.DecDegrees,
		DistanceMeters: s.Distance * astro.AUMeters,
	}
}

// SiderealTime returns Greenwich apparent sidereal time in hours [0, 24).
// Earth rotation is read from UT1; the equation of the equinoxes from TT.
func (e *Ephemeris) SiderealTime(t timescale.Instant) (float64, error) {
	if err := e.checkRange(t); err != nil {
		return 0, err
	}
	ut1 := t.UT1()
	gmst := astro.GMST(ut1.Whole, ut1.Fraction)
	eqeq := astro.ComputeNutation(t.TT().Centuries()).EquationOfEquinoxes()

	hours := math.Mod((gmst+eqeq)*12/math.Pi, 24)
	if hours < 0 {
		hours += 24
	}
	if hours >= 24 {
		hours = 0
	}
	return hours, nil
}

func (e *Ephemeris) checkRange(t timescale.Instant) error {
	if !e.ds.Covers(t.Time()) {
		from, to := e.ds.Span()
		return fmt.Errorf("%w: %s not in [%s, %s)", ErrOutOfRange, t,
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return nil
}

// RADec returns a's coordinates on the true equator and equinox of date.
func (e *Ephemeris) RADec(a Astrometric) Coordinate { return a.RADec() }

// PlanetaryMagnitude returns the apparent magnitude of the observed body.
func (e *Ephemeris) PlanetaryMagnitude(a Astrometric) (float64, error) {
	return PlanetaryMagnitude(a)
}
