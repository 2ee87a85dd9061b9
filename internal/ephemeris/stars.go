package ephemeris

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/star/starfix/internal/astro"
	"github.com/star/starfix/internal/timescale"
)

// catalogEpoch is J1991.25 (TT), the Hipparcos reference epoch.
const catalogEpoch = 2448349.0625

// minParallaxMas stands in for zero or negative parallaxes, placing the star
// effectively at infinity.
const minParallaxMas = 1.0e-6

// StarSpec is the catalog astrometry for one star at the catalog epoch.
type StarSpec struct {
	RADegrees       float64
	DecDegrees      float64
	ParallaxMas     float64
	PMRAMasPerYear  float64 // includes the cos(dec) factor
	PMDecMasPerYear float64
}

// Coordinates holds batch results as parallel sequences aligned with the
// input order.
type Coordinates struct {
	RAHours        []float64
	DecDegrees     []float64
	DistanceMeters []float64
}

// Len returns the number of entries.
func (c Coordinates) Len() int { return len(c.RAHours) }

// At returns entry i.
func (c Coordinates) At(i int) Coordinate {
	return Coordinate{RAHours: c.RAHours[i], DecDegrees: c.DecDegrees[i], DistanceMeters: c.DistanceMeters[i]}
}

// starVectors is a star's position (AU) and space motion (AU/day) at the
// catalog epoch, J2000 equatorial.
type starVectors struct {
	pos, vel astro.Vec3
}

func newStarVectors(s StarSpec) starVectors {
	plx := s.ParallaxMas
	if plx <= 0 {
		plx = minParallaxMas
	}
	dist := 1 / math.Sin(astro.ArcsecToRad(plx*1e-3))

	sr, cr := math.Sincos(astro.DegToRad(s.RADegrees))
	sd, cd := math.Sincos(astro.DegToRad(s.DecDegrees))

	pmr := s.PMRAMasPerYear / (plx * 365.25)
	pmd := s.PMDecMasPerYear / (plx * 365.25)

	return starVectors{
		pos: astro.Vec3{X: dist * cd * cr, Y: dist * cd * sr, Z: dist * sd},
		vel: astro.Vec3{
			X: -pmr*sr - pmd*sd*cr,
			Y: pmr*cr - pmd*sd*sr,
			Z: pmd * cd,
		},
	}
}

// observe propagates the star to the epoch at which light reaching the
// observer left it and returns the observer-relative vector.
func (sv starVectors) observe(tdb float64, observer astro.Vec3) astro.Vec3 {
	u := sv.pos.Normalized()
	dt := u.Dot(observer) / astro.LightSpeedAUPerDay
	pos := sv.pos.Add(sv.vel.Scale(tdb + dt - catalogEpoch))
	return pos.Sub(observer)
}

// starBatch is the per-instant state shared by every star in one batch.
type starBatch struct {
	tdb   float64
	earth astro.Vec3
	pn    astro.Mat3
}

// starJob is a contiguous index range of the input.
type starJob struct {
	start, end int
}

// ObserveStars computes coordinates for every star at t. The result's
// sequences have the same length and order as stars. Earth's position and
// the precession-nutation matrix are computed once for the whole batch.
func (e *Ephemeris) ObserveStars(ctx context.Context, t timescale.Instant, stars []StarSpec) (Coordinates, error) {
	out := Coordinates{
		RAHours:        make([]float64, len(stars)),
		DecDegrees:     make([]float64, len(stars)),
		DistanceMeters: make([]float64, len(stars)),
	}
	if err := e.checkRange(t); err != nil {
		return Coordinates{}, err
	}
	if len(stars) == 0 {
		return out, nil
	}

	tdb := t.TDB()
	batch := starBatch{
		tdb:   tdb.Float(),
		earth: e.sources[Earth].position(tdb.Centuries(), e.ds.EarthMoonMassRatio),
		pn:    astro.PrecessionNutation(t.TT().Centuries()),
	}

	workers := e.workers
	chunk := (len(stars) + workers - 1) / workers
	if chunk < 64 {
		chunk = 64
	}

	jobs := make(chan starJob, workers*2)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := observeRange(batch, stars, out, job); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
			}
		}()
	}

	// Each job writes only its own index range, so results need no channel.
feed:
	for start := 0; start < len(stars); start += chunk {
		job := starJob{start: start, end: min(start+chunk, len(stars))}
		select {
		case jobs <- job:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Coordinates{}, fmt.Errorf("star batch cancelled: %w", err)
	}
	if firstErr != nil {
		return Coordinates{}, firstErr
	}
	return out, nil
}

func observeRange(b starBatch, stars []StarSpec, out Coordinates, job starJob) error {
	for i := job.start; i < job.end; i++ {
		v := newStarVectors(stars[i]).observe(b.tdb, b.earth)
		if !v.IsFinite() {
			return fmt.Errorf("%w: star at index %d has non-finite position", ErrDegenerate, i)
		}
		c := toCoordinate(b.pn, v)
		out.RAHours[i] = c.RAHours
		out.DecDegrees[i] = c.DecDegrees
		out.DistanceMeters[i] = c.DistanceMeters
	}
	return nil
}
