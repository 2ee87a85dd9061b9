package catalog

import "time"

// Star is one Hipparcos catalog entry at the catalog epoch J1991.25.
type Star struct {
	HIP             int
	Magnitude       float64 // Johnson V
	RADegrees       float64
	DecDegrees      float64
	ParallaxMas     float64
	PMRAMasPerYear  float64 // mu_alpha*, includes cos(dec)
	PMDecMasPerYear float64
}

// Source describes where a loaded catalog came from.
type Source struct {
	Kind     string // sqlite, file, cache or remote
	Location string
	LoadedAt time.Time
}
