package ephemeris

import (
	"fmt"
	"math"

	"github.com/star/starfix/internal/astro"
)

// Planetary magnitudes follow Mallama & Hilton (2018), "Computing apparent
// planetary magnitudes for The Astronomical Almanac".

var (
	saturnPole = astro.FromSpherical(astro.DegToRad(40.589), astro.DegToRad(83.537), 1)
	uranusPole = astro.FromSpherical(astro.DegToRad(257.311), astro.DegToRad(-15.175), 1)
)

// magnitudeModels maps canonical body names to their brightness model.
var magnitudeModels = map[string]func(geometry) float64{
	Mercury:              mercuryMagnitude,
	"mercury barycenter": mercuryMagnitude,
	Venus:                venusMagnitude,
	"venus barycenter":   venusMagnitude,
	Mars:                 marsMagnitude,
	"mars barycenter":    marsMagnitude,
	"jupiter barycenter": jupiterMagnitude,
	"saturn barycenter":  saturnMagnitude,
	"uranus barycenter":  uranusMagnitude,
	"neptune barycenter": neptuneMagnitude,
}

// geometry is the Sun-target-observer configuration a model needs.
type geometry struct {
	r, delta float64 // heliocentric and geocentric distance, AU
	phase    float64 // degrees
	toSun    astro.Vec3
	toEarth  astro.Vec3
	year     int
}

// PlanetaryMagnitude returns the apparent visual magnitude of the observed
// body.
func PlanetaryMagnitude(a Astrometric) (float64, error) {
	model, ok := magnitudeModels[a.Target]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoMagnitudeModel, a.Target)
	}
	g := geometry{
		r:       a.TargetHelio.Norm(),
		delta:   a.Position.Norm(),
		phase:   astro.SeparationDegrees(a.TargetHelio, a.Position),
		toSun:   a.TargetHelio.Scale(-1),
		toEarth: a.Position.Scale(-1),
		year:    a.Instant.Year(),
	}
	if g.r == 0 || g.delta == 0 {
		return 0, fmt.Errorf("%w: zero distance for %q", ErrDegenerate, a.Target)
	}
	mag := model(g)
	if math.IsNaN(mag) || math.IsInf(mag, 0) {
		return 0, fmt.Errorf("%w: magnitude of %q is not finite", ErrDegenerate, a.Target)
	}
	return mag, nil
}

func (g geometry) distanceTerm() float64 {
	return 5 * math.Log10(g.r*g.delta)
}

// subLatitude returns the planetocentric latitude (degrees) of the point
// below dir on a body with the given pole.
func subLatitude(pole, dir astro.Vec3) float64 {
	return 90 - astro.SeparationDegrees(pole, dir)
}

func mercuryMagnitude(g geometry) float64 {
	a := g.phase
	return -0.613 + g.distanceTerm() + poly(a, 0, 6.3280e-02, -1.6336e-03, 3.3644e-05, -3.4265e-07, 1.6893e-09, -3.0334e-12)
}

func venusMagnitude(g geometry) float64 {
	a := g.phase
	if a < 163.7 {
		return -4.384 + g.distanceTerm() + poly(a, 0, -1.044e-03, 3.687e-04, -2.814e-06, 8.938e-09)
	}
	return 236.05828 + g.distanceTerm() + poly(a, 0, -2.81914, 8.39034e-03)
}

func marsMagnitude(g geometry) float64 {
	a := g.phase
	if a <= 50 {
		return -1.601 + g.distanceTerm() + poly(a, 0, 2.267e-02, -1.302e-04)
	}
	return -0.367 + g.distanceTerm() + poly(a, 0, -0.02573, 3.445e-04)
}

func jupiterMagnitude(g geometry) float64 {
	a := g.phase
	if a <= 12 {
		return -9.395 + g.distanceTerm() + poly(a, 0, -3.7e-04, 6.16e-04)
	}
	x := a / 180
	return -9.428 + g.distanceTerm() - 2.5*math.Log10(poly(x, 1, -1.507, -0.363, -0.062, 2.809, -1.876))
}

func saturnMagnitude(g geometry) float64 {
	a := g.phase
	// Ring tilt: geometric mean of the Sun and Earth elevations above the
	// ring plane; zero when they are on opposite sides.
	bs := subLatitude(saturnPole, g.toSun)
	be := subLatitude(saturnPole, g.toEarth)
	var beta float64
	if bs*be > 0 {
		beta = math.Sqrt(bs * be)
	}
	sinBeta := math.Sin(astro.DegToRad(beta))

	switch {
	case a <= 6.5 && beta <= 27:
		return -8.914 + g.distanceTerm() - 1.825*sinBeta + 0.026*a - 0.378*sinBeta*math.Exp(-2.25*a)
	case a <= 6.5:
		return -8.95 + g.distanceTerm() + poly(a, 0, -3.7e-04, 6.16e-04)
	default:
		return -8.94 + g.distanceTerm() + poly(a, 0, 2.446e-04, 2.672e-04, -1.505e-06, 4.767e-09)
	}
}

func uranusMagnitude(g geometry) float64 {
	a := g.phase
	lat := (math.Abs(subLatitude(uranusPole, g.toSun)) + math.Abs(subLatitude(uranusPole, g.toEarth))) / 2
	return -7.110 + g.distanceTerm() - 8.4e-04*lat + 6.587e-03*a + 1.045e-04*a*a
}

func neptuneMagnitude(g geometry) float64 {
	var m float64
	switch {
	case g.year >= 2000:
		m = -7.00
	case g.year < 1980:
		m = -6.89
	default:
		m = -6.89 - 0.0054*float64(g.year-1980)
	}
	m += g.distanceTerm()
	if a := g.phase; a > 1.9 {
		m += 7.944e-03*a + 9.617e-05*a*a
	}
	return m
}

// poly evaluates c[0] + c[1]x + c[2]x² + ... by Horner's rule.
func poly(x float64, c ...float64) float64 {
	var sum float64
	for i := len(c) - 1; i >= 0; i-- {
		sum = sum*x + c[i]
	}
	return sum
}
