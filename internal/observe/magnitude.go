package observe

import (
	"fmt"

	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
)

// starMagnitude is the catalog value, unchanged.
func starMagnitude(s catalog.Star) float64 { return s.Magnitude }

// magnitude returns the brightness reported for a body target: the oracle
// model for planets, none for the Sun and Moon.
func (p *Pipeline) magnitude(target Target, a ephemeris.Astrometric) (*float64, error) {
	if target.Kind != KindPlanet {
		return nil, nil
	}
	m, err := p.oracle.PlanetaryMagnitude(a)
	if err != nil {
		return nil, fmt.Errorf("%w: magnitude of %s: %w", ErrComputation, target, err)
	}
	return &m, nil
}
