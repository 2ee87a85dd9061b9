package astro

import "math"

// J2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const J2000 = 2451545.0

// DaysPerCentury is the length of a Julian century in days.
const DaysPerCentury = 36525.0

// GMST calculates Greenwich Mean Sidereal Time in radians from a UT1 Julian
// Date split into whole and fractional parts (the split keeps sub-millisecond
// resolution that a single float64 JD near 2.45e6 cannot hold).
// Uses the IAU-82 model as described in Vallado "Fundamentals of Astrodynamics".
//
// Formula (Vallado Eq 3-47):
//
//	θ_GMST = 67310.54841 + (876600h + 8640184.812866)*T + 0.093104*T² - 6.2e-6*T³
//
// where T is Julian centuries of UT1 from J2000.0, result is in seconds of time.
func GMST(jdWhole, jdFrac float64) float64 {
	tUT1 := ((jdWhole - J2000) + jdFrac) / DaysPerCentury

	// The 876600h term is whole days' worth of rotation; evaluate it on the
	// day fraction alone so the large multiple of 86400 never enters.
	days := (jdWhole - J2000) + jdFrac
	dayFrac := days - math.Floor(days)

	gmstSec := 67310.54841 +
		86400.0*dayFrac +
		8640184.812866*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	// Normalize to [0, 86400) seconds, then convert to radians.
	gmstSec = math.Mod(gmstSec, 86400.0)
	if gmstSec < 0 {
		gmstSec += 86400.0
	}
	return gmstSec / 86400.0 * 2.0 * math.Pi
}
