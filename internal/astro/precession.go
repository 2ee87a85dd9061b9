package astro

import "math"

// ObliquityJ2000 is the mean obliquity of the ecliptic at J2000 in radians.
const ObliquityJ2000 = 23.439291111 * math.Pi / 180

// MeanObliquity returns the mean obliquity of the ecliptic of date in
// radians (IAU 1980). T is Julian centuries of TT from J2000.0.
func MeanObliquity(T float64) float64 {
	arcsec := 84381.448 - 46.8150*T - 0.00059*T*T + 0.001813*T*T*T
	return ArcsecToRad(arcsec)
}

// PrecessionMatrix returns the IAU 1976 (Lieske) precession rotation from
// the J2000 mean equator and equinox to the mean equator and equinox of date.
func PrecessionMatrix(T float64) Mat3 {
	zeta := ArcsecToRad(2306.2181*T + 0.30188*T*T + 0.017998*T*T*T)
	z := ArcsecToRad(2306.2181*T + 1.09468*T*T + 0.018203*T*T*T)
	theta := ArcsecToRad(2004.3109*T - 0.42665*T*T - 0.041833*T*T*T)

	return RotZ(-z).Mul(RotY(theta)).Mul(RotZ(-zeta))
}

// Nutation holds the nutation in longitude and obliquity (radians) together
// with the mean and true obliquities they were computed against.
type Nutation struct {
	DPsi, DEps    float64
	MeanObliquity float64
	TrueObliquity float64
}

// nutationTerm is one row of the truncated IAU 1980 series: multipliers of
// the Delaunay arguments (D, M, M', F, Ω) and coefficients in 0.0001".
type nutationTerm struct {
	d, m, mp, f, om float64
	psi, psiT       float64
	eps, epsT       float64
}

// Largest terms of the IAU 1980 theory (Meeus, Table 22.A); the dropped
// terms are each below 0.0012".
var nutationTerms = []nutationTerm{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{-2, 0, 0, 2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 0, 2, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{0, 0, 1, 0, 0, 712, 0.1, -7, 0},
	{-2, 1, 0, 2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 0, 2, 1, -386, -0.4, 200, 0},
	{0, 0, 1, 2, 2, -301, 0, 129, -0.1},
	{-2, -1, 0, 2, 2, 217, -0.5, -95, 0.3},
	{-2, 0, 1, 0, 0, -158, 0, 0, 0},
	{-2, 0, 0, 2, 1, 129, 0.1, -70, 0},
	{0, 0, -1, 2, 2, 123, 0, -53, 0},
	{2, 0, 0, 0, 0, 63, 0, 0, 0},
	{0, 0, 1, 0, 1, 63, 0.1, -33, 0},
	{2, 0, -1, 2, 2, -59, 0, 26, 0},
	{0, 0, -1, 0, 1, -58, -0.1, 32, 0},
	{0, 0, 1, 2, 1, -51, 0, 27, 0},
	{-2, 0, 2, 0, 0, 48, 0, 0, 0},
	{0, 0, -2, 2, 1, 46, 0, -24, 0},
	{2, 0, 0, 2, 2, -38, 0, 16, 0},
	{0, 0, 2, 2, 2, -31, 0, 13, 0},
	{0, 0, 2, 0, 0, 29, 0, 0, 0},
	{-2, 0, 1, 2, 2, 29, 0, -12, 0},
	{0, 0, 0, 2, 0, 26, 0, 0, 0},
	{-2, 0, 0, 2, 0, -22, 0, 0, 0},
	{0, 0, -1, 2, 1, 21, 0, -10, 0},
	{0, 2, 0, 0, 0, 17, -0.1, 0, 0},
	{2, 0, -1, 0, 1, 16, 0, -8, 0},
	{-2, 2, 0, 2, 2, -16, 0.1, 7, 0},
	{0, 1, 0, 0, 1, -15, 0, 9, 0},
	{-2, 0, 1, 0, 1, -13, 0, 7, 0},
	{0, -1, 0, 0, 1, -12, 0, 6, 0},
}

// ComputeNutation evaluates the truncated IAU 1980 nutation series.
// T is Julian centuries of TT from J2000.0.
func ComputeNutation(T float64) Nutation {
	T2 := T * T
	T3 := T2 * T

	// Delaunay arguments in degrees (Meeus 22).
	D := 297.85036 + 445267.111480*T - 0.0019142*T2 + T3/189474
	M := 357.52772 + 35999.050340*T - 0.0001603*T2 - T3/300000
	Mp := 134.96298 + 477198.867398*T + 0.0086972*T2 + T3/56250
	F := 93.27191 + 483202.017538*T - 0.0036825*T2 + T3/327270
	Om := 125.04452 - 1934.136261*T + 0.0020708*T2 + T3/450000

	var dpsi, deps float64
	for _, term := range nutationTerms {
		arg := DegToRad(term.d*D + term.m*M + term.mp*Mp + term.f*F + term.om*Om)
		s, c := math.Sincos(arg)
		dpsi += (term.psi + term.psiT*T) * s
		deps += (term.eps + term.epsT*T) * c
	}

	eps0 := MeanObliquity(T)
	n := Nutation{
		DPsi:          ArcsecToRad(dpsi * 1e-4),
		DEps:          ArcsecToRad(deps * 1e-4),
		MeanObliquity: eps0,
	}
	n.TrueObliquity = eps0 + n.DEps
	return n
}

// Matrix returns the nutation rotation from the mean equator and equinox of
// date to the true equator and equinox of date.
func (n Nutation) Matrix() Mat3 {
	return RotX(-n.TrueObliquity).Mul(RotZ(-n.DPsi)).Mul(RotX(n.MeanObliquity))
}

// EquationOfEquinoxes returns GAST − GMST in radians.
func (n Nutation) EquationOfEquinoxes() float64 {
	return n.DPsi * math.Cos(n.TrueObliquity)
}

// PrecessionNutation returns the rotation from the J2000 frame to the true
// equator and equinox of date.
func PrecessionNutation(T float64) Mat3 {
	return ComputeNutation(T).Matrix().Mul(PrecessionMatrix(T))
}
