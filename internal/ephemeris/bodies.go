package ephemeris

import (
	"sort"

	"github.com/star/starfix/internal/astro"
)

// Body names understood by the ephemeris, following the JPL DE naming.
const (
	SolarSystemBarycenter = "solar system barycenter"
	Sun                   = "sun"
	Moon                  = "moon"
	Earth                 = "earth"
	EarthBarycenter       = "earth barycenter"
	Mercury               = "mercury"
	Venus                 = "venus"
	Mars                  = "mars"
)

// aliases map alternative names onto canonical ones.
var aliases = map[string]string{
	"ssb":                   SolarSystemBarycenter,
	"earth-moon barycenter": EarthBarycenter,
	"emb":                   EarthBarycenter,
}

// planetBarycenters lists planets whose own centre is not separated from
// their system barycenter in the dataset (no massive moons).
var planetBarycenters = map[string]string{
	Mercury: "mercury barycenter",
	Venus:   "venus barycenter",
	Mars:    "mars barycenter",
}

// canonical resolves aliases. The input must already be lower case.
func canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// source describes how one named body is positioned.
type source struct {
	kind     sourceKind
	elements BodyElements
}

type sourceKind int

const (
	sourceOrigin sourceKind = iota
	sourceKepler
	sourceEarth
	sourceMoon
)

// buildSources maps every recognised name onto a position source.
func buildSources(ds *Dataset) map[string]source {
	out := make(map[string]source, len(ds.Bodies)+8)
	out[SolarSystemBarycenter] = source{kind: sourceOrigin}
	out[Sun] = source{kind: sourceOrigin}

	byName := make(map[string]BodyElements, len(ds.Bodies))
	for _, b := range ds.Bodies {
		byName[b.Name] = b
		out[b.Name] = source{kind: sourceKepler, elements: b}
	}
	for planet, bary := range planetBarycenters {
		if b, ok := byName[bary]; ok {
			out[planet] = source{kind: sourceKepler, elements: b}
		}
	}

	emb := byName[EarthBarycenter]
	out[Earth] = source{kind: sourceEarth, elements: emb}
	out[Moon] = source{kind: sourceMoon, elements: emb}
	return out
}

// names returns the recognised canonical names in sorted order.
func names(sources map[string]source) []string {
	out := make([]string, 0, len(sources))
	for n := range sources {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// position returns the heliocentric J2000 position (AU) at T centuries TDB.
func (s source) position(T, massRatio float64) astro.Vec3 {
	switch s.kind {
	case sourceKepler:
		return s.elements.heliocentric(T)
	case sourceEarth:
		emb := s.elements.heliocentric(T)
		return emb.Sub(moonGeocentric(T).Scale(1 / (1 + massRatio)))
	case sourceMoon:
		emb := s.elements.heliocentric(T)
		return emb.Add(moonGeocentric(T).Scale(massRatio / (1 + massRatio)))
	default:
		return astro.Vec3{}
	}
}
