package ephemeris

import (
	"math"

	"github.com/star/starfix/internal/astro"
)

// heliocentric returns the J2000 equatorial heliocentric position (AU) of a
// body from its mean elements, T centuries of TDB after J2000.
func (b BodyElements) heliocentric(T float64) astro.Vec3 {
	a := b.A.At(T)
	e := b.E.At(T)
	incl := astro.DegToRad(b.I.At(T))
	L := b.L.At(T)
	varpi := b.LongPeri.At(T)
	node := b.LongNode.At(T)

	omega := astro.DegToRad(varpi - node)
	M := astro.DegToRad(normalizeSigned180(L - varpi))
	E := solveKepler(M, e)

	// Position in the orbital plane, x towards perihelion.
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	so, co := math.Sincos(omega)
	sn, cn := math.Sincos(astro.DegToRad(node))
	si, ci := math.Sincos(incl)

	ecl := astro.Vec3{
		X: (co*cn-so*sn*ci)*xp + (-so*cn-co*sn*ci)*yp,
		Y: (co*sn+so*cn*ci)*xp + (-so*sn+co*cn*ci)*yp,
		Z: (so*si)*xp + (co*si)*yp,
	}
	return astro.EclipticToEquatorial(ecl)
}

// solveKepler solves M = E − e·sin E for the eccentric anomaly (radians)
// by Newton iteration.
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)
	for i := 0; i < 30; i++ {
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < 1e-14 {
			break
		}
	}
	return E
}

// normalizeSigned180 maps degrees onto (−180, 180].
func normalizeSigned180(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}
