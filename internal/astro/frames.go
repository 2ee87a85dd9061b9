package astro

import "math"

// AUMeters is the Astronomical Unit in meters (IAU 2012).
const AUMeters = 149597870700.0

// LightSpeedAUPerDay is the speed of light in AU per day.
const LightSpeedAUPerDay = 173.1446326846693

// EclipticToEquatorial converts J2000 ecliptic XYZ to J2000 equatorial XYZ.
func EclipticToEquatorial(ecl Vec3) Vec3 {
	return RotX(-ObliquityJ2000).Apply(ecl)
}

// Spherical holds a direction and distance on the celestial sphere.
type Spherical struct {
	RAHours    float64 // [0, 24)
	DecDegrees float64 // [-90, 90]
	Distance   float64 // same unit as the input vector
}

// ToSpherical converts a Cartesian equatorial vector to right ascension,
// declination and distance.
func ToSpherical(v Vec3) Spherical {
	r := v.Norm()
	if r == 0 {
		return Spherical{}
	}
	ra := math.Atan2(v.Y, v.X)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	raHours := ra * 12 / math.Pi
	if raHours >= 24 {
		raHours = 0
	}
	sinDec := v.Z / r
	if sinDec > 1 {
		sinDec = 1
	} else if sinDec < -1 {
		sinDec = -1
	}
	return Spherical{
		RAHours:    raHours,
		DecDegrees: RadToDeg(math.Asin(sinDec)),
		Distance:   r,
	}
}

// FromSpherical builds a Cartesian vector from RA/Dec in radians and a distance.
func FromSpherical(raRad, decRad, dist float64) Vec3 {
	sr, cr := math.Sincos(raRad)
	sd, cd := math.Sincos(decRad)
	return Vec3{X: dist * cd * cr, Y: dist * cd * sr, Z: dist * sd}
}

// SeparationDegrees returns the angle between two vectors in degrees.
func SeparationDegrees(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	c := a.Dot(b) / (na * nb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return RadToDeg(math.Acos(c))
}
