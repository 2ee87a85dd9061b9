package ephemeris

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed elements.yaml
var defaultElements []byte

// Element is a mean orbital element and its linear rate per Julian century.
type Element [2]float64

// At evaluates the element T centuries after J2000.
func (e Element) At(T float64) float64 {
	return e[0] + e[1]*T
}

// BodyElements holds heliocentric mean elements for one planetary system
// barycenter, referred to the J2000 ecliptic.
type BodyElements struct {
	Name     string  `yaml:"name"`
	NAIFID   int     `yaml:"naif_id"`
	A        Element `yaml:"a"`
	E        Element `yaml:"e"`
	I        Element `yaml:"i"`
	L        Element `yaml:"l"`
	LongPeri Element `yaml:"long_peri"`
	LongNode Element `yaml:"long_node"`
}

// Dataset is the ephemeris input loaded once at startup.
type Dataset struct {
	Name               string         `yaml:"name"`
	ValidFrom          string         `yaml:"valid_from"`
	ValidTo            string         `yaml:"valid_to"`
	EarthMoonMassRatio float64        `yaml:"earth_moon_mass_ratio"`
	Bodies             []BodyElements `yaml:"bodies"`

	from, to time.Time
}

// DefaultDataset returns the embedded JPL approximate-elements dataset.
func DefaultDataset() (*Dataset, error) {
	return ParseDataset(bytes.NewReader(defaultElements))
}

// LoadDataset reads a dataset file. An empty path selects the embedded default.
func LoadDataset(path string) (*Dataset, error) {
	if path == "" {
		return DefaultDataset()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ephemeris dataset: %w", err)
	}
	defer f.Close()
	return ParseDataset(f)
}

// ParseDataset decodes and validates a YAML dataset.
func ParseDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decoding ephemeris dataset: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, fmt.Errorf("invalid ephemeris dataset %q: %w", ds.Name, err)
	}
	return &ds, nil
}

func (ds *Dataset) validate() error {
	var err error
	if ds.from, err = time.Parse(time.DateOnly, ds.ValidFrom); err != nil {
		return fmt.Errorf("valid_from: %w", err)
	}
	to, err := time.Parse(time.DateOnly, ds.ValidTo)
	if err != nil {
		return fmt.Errorf("valid_to: %w", err)
	}
	// valid_to names the last covered day.
	ds.to = to.Add(24 * time.Hour)
	if !ds.from.Before(ds.to) {
		return fmt.Errorf("valid_from %s is not before valid_to %s", ds.ValidFrom, ds.ValidTo)
	}
	if ds.EarthMoonMassRatio <= 0 {
		return fmt.Errorf("earth_moon_mass_ratio must be positive, got %v", ds.EarthMoonMassRatio)
	}

	seen := make(map[string]bool, len(ds.Bodies))
	for _, b := range ds.Bodies {
		if b.Name == "" {
			return fmt.Errorf("body with naif_id %d has no name", b.NAIFID)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate body %q", b.Name)
		}
		seen[b.Name] = true
		if b.A[0] <= 0 {
			return fmt.Errorf("body %q: semi-major axis must be positive", b.Name)
		}
		if b.E[0] < 0 || b.E[0] >= 1 {
			return fmt.Errorf("body %q: eccentricity %v outside [0, 1)", b.Name, b.E[0])
		}
	}
	if !seen[EarthBarycenter] {
		return fmt.Errorf("dataset must define %q", EarthBarycenter)
	}
	return nil
}

// Covers reports whether t lies inside the dataset's validity span.
func (ds *Dataset) Covers(t time.Time) bool {
	return !t.Before(ds.from) && t.Before(ds.to)
}

// Span returns the covered interval [from, to).
func (ds *Dataset) Span() (time.Time, time.Time) {
	return ds.from, ds.to
}
