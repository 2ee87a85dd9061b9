package timescale

import "time"

// ttMinusTAI is the fixed offset between TT and TAI in seconds.
const ttMinusTAI = 32.184

type leapSecond struct {
	effective time.Time
	offset    float64 // TAI − UTC from effective onward
}

func utcDate(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// leapSeconds lists every TAI − UTC step published by the IERS.
var leapSeconds = []leapSecond{
	{utcDate(1972, time.January), 10},
	{utcDate(1972, time.July), 11},
	{utcDate(1973, time.January), 12},
	{utcDate(1974, time.January), 13},
	{utcDate(1975, time.January), 14},
	{utcDate(1976, time.January), 15},
	{utcDate(1977, time.January), 16},
	{utcDate(1978, time.January), 17},
	{utcDate(1979, time.January), 18},
	{utcDate(1980, time.January), 19},
	{utcDate(1981, time.July), 20},
	{utcDate(1982, time.July), 21},
	{utcDate(1983, time.July), 22},
	{utcDate(1985, time.July), 23},
	{utcDate(1988, time.January), 24},
	{utcDate(1990, time.January), 25},
	{utcDate(1991, time.January), 26},
	{utcDate(1992, time.July), 27},
	{utcDate(1993, time.July), 28},
	{utcDate(1994, time.July), 29},
	{utcDate(1996, time.January), 30},
	{utcDate(1997, time.July), 31},
	{utcDate(1999, time.January), 32},
	{utcDate(2006, time.January), 33},
	{utcDate(2009, time.January), 34},
	{utcDate(2012, time.July), 35},
	{utcDate(2015, time.July), 36},
	{utcDate(2017, time.January), 37},
}

// taiMinusUTC returns TAI − UTC for t. Instants before 1972 use the
// first table value, 10 s.
func taiMinusUTC(t time.Time) float64 {
	offset := leapSeconds[0].offset
	for _, ls := range leapSeconds[1:] {
		if t.Before(ls.effective) {
			break
		}
		offset = ls.offset
	}
	return offset
}

// leapEra reports whether t is covered by the leap-second table, where UT1
// stays within 0.9 s of UTC.
func leapEra(t time.Time) bool {
	return !t.Before(leapSeconds[0].effective)
}

// deltaTPolynomial returns ΔT = TT − UT in seconds from the Espenak–Meeus
// (NASA 2006) polynomial fits. Only used before the leap-second era.
func deltaTPolynomial(y float64) float64 {
	switch {
	case y < -500:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	case y < 500:
		u := y / 100
		return poly(u, 10583.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	case y < 1600:
		u := (y - 1000) / 100
		return poly(u, 1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	case y < 1700:
		t := y - 1600
		return 120 - 0.9808*t - 0.01532*t*t + t*t*t/7129
	case y < 1800:
		t := y - 1700
		return poly(t, 8.83, 0.1603, -0.0059285, 0.00013336, -1/1174000.0)
	case y < 1860:
		t := y - 1800
		return poly(t, 13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case y < 1900:
		t := y - 1860
		return poly(t, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1/233174.0)
	case y < 1920:
		t := y - 1900
		return poly(t, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1941:
		t := y - 1920
		return poly(t, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1961:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y < 1986:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y < 2005:
		t := y - 2000
		return poly(t, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// poly evaluates c0 + c1·x + c2·x² + ... with Horner's rule.
func poly(x float64, coeffs ...float64) float64 {
	var r float64
	for i := len(coeffs) - 1; i >= 0; i-- {
		r = r*x + coeffs[i]
	}
	return r
}
