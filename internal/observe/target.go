package observe

import (
	"fmt"

	"github.com/star/starfix/internal/catalog"
)

// Kind tags what a Target refers to.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
	KindSun
	KindMoon
)

var kindNames = [...]string{
	KindStar:   "star",
	KindPlanet: "planet",
	KindSun:    "sun",
	KindMoon:   "moon",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps "star"/"hip", "planet", "sun" and "moon" onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "star", "hip":
		return KindStar, nil
	case "planet":
		return KindPlanet, nil
	case "sun":
		return KindSun, nil
	case "moon":
		return KindMoon, nil
	}
	return 0, fmt.Errorf("unknown target kind %q", s)
}

// Target is a resolved observation target. Star is set only for KindStar;
// Name is the ephemeris body name for every other kind.
type Target struct {
	Kind Kind
	Name string
	Star *catalog.Star
}

func (t Target) String() string {
	if t.Kind == KindStar && t.Star != nil {
		return fmt.Sprintf("HIP %d", t.Star.HIP)
	}
	return t.Name
}
