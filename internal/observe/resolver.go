package observe

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/star/starfix/internal/catalog"
)

// planetAliases maps planet names that only exist as system barycenters in
// the ephemeris.
var planetAliases = map[string]string{
	"jupiter": "jupiter barycenter",
	"saturn":  "saturn barycenter",
}

// BodySet reports which body names the ephemeris can position.
type BodySet interface {
	Has(name string) bool
}

// StarTable is the read-only star catalog the pipeline consumes.
type StarTable interface {
	Lookup(hip int) (catalog.Star, bool)
	Brighter(maxMag float64) []catalog.Star
	Len() int
}

// Resolver turns request identifiers into Targets. It is safe for
// concurrent use.
type Resolver struct {
	catalog StarTable
	bodies  BodySet
}

// NewResolver creates a Resolver over a catalog and a body set.
func NewResolver(c StarTable, bodies BodySet) *Resolver {
	return &Resolver{catalog: c, bodies: bodies}
}

// Resolve dispatches on kind. ident is a HIP number for stars, a body name
// for planets and ignored for the Sun and Moon.
func (r *Resolver) Resolve(kind Kind, ident string) (Target, error) {
	switch kind {
	case KindStar:
		hip, err := strconv.Atoi(strings.TrimSpace(ident))
		if err != nil || hip <= 0 {
			return Target{}, fmt.Errorf("%w: invalid HIP number %q", ErrUnknownBody, ident)
		}
		return r.ResolveStar(hip)
	case KindPlanet:
		return r.ResolvePlanet(ident)
	case KindSun:
		return r.Sun(), nil
	case KindMoon:
		return r.Moon(), nil
	}
	return Target{}, fmt.Errorf("%w: kind %v", ErrUnknownBody, kind)
}

// ResolveStar looks up a HIP number in the catalog.
func (r *Resolver) ResolveStar(hip int) (Target, error) {
	s, ok := r.catalog.Lookup(hip)
	if !ok {
		return Target{}, fmt.Errorf("%w: HIP %d not in catalog", ErrUnknownBody, hip)
	}
	return Target{Kind: KindStar, Star: &s}, nil
}

// ResolvePlanet case-folds and trims name, applies the barycenter aliases
// and checks the result against the ephemeris.
func (r *Resolver) ResolvePlanet(name string) (Target, error) {
	// A Caser is stateful, so each call folds with its own.
	folded := cases.Fold().String(strings.TrimSpace(name))
	if alias, ok := planetAliases[folded]; ok {
		folded = alias
	}
	if folded == "" || !r.bodies.Has(folded) {
		return Target{}, fmt.Errorf("%w: planet %q", ErrUnknownBody, name)
	}
	return Target{Kind: KindPlanet, Name: folded}, nil
}

// Sun returns the fixed Sun target.
func (r *Resolver) Sun() Target { return Target{Kind: KindSun, Name: "sun"} }

// Moon returns the fixed Moon target.
func (r *Resolver) Moon() Target { return Target{Kind: KindMoon, Name: "moon"} }
