// Package catalog loads the Hipparcos star catalog and serves it as an
// immutable in-memory table.
package catalog

// Catalog is an immutable, ordered star table. It is safe for concurrent use.
type Catalog struct {
	stars      []Star
	byHIP      map[int]int
	duplicates []int
}

// New builds a Catalog preserving input order. When a HIP number repeats,
// the first row wins and later ones are reported by Duplicates.
func New(stars []Star) *Catalog {
	c := &Catalog{
		stars: make([]Star, 0, len(stars)),
		byHIP: make(map[int]int, len(stars)),
	}
	for _, s := range stars {
		if _, ok := c.byHIP[s.HIP]; ok {
			c.duplicates = append(c.duplicates, s.HIP)
			continue
		}
		c.byHIP[s.HIP] = len(c.stars)
		c.stars = append(c.stars, s)
	}
	return c
}

// Lookup returns the star with the given HIP number.
func (c *Catalog) Lookup(hip int) (Star, bool) {
	i, ok := c.byHIP[hip]
	if !ok {
		return Star{}, false
	}
	return c.stars[i], true
}

// Brighter returns, in catalog order, every star whose magnitude is at most
// maxMag. The result is a fresh slice; it is empty but non-nil when nothing
// qualifies.
func (c *Catalog) Brighter(maxMag float64) []Star {
	out := make([]Star, 0)
	for _, s := range c.stars {
		if s.Magnitude <= maxMag {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of stars.
func (c *Catalog) Len() int { return len(c.stars) }

// Stars returns a copy of every star in catalog order.
func (c *Catalog) Stars() []Star {
	out := make([]Star, len(c.stars))
	copy(out, c.stars)
	return out
}

// Duplicates returns the HIP numbers of rows dropped by New.
func (c *Catalog) Duplicates() []int {
	out := make([]int, len(c.duplicates))
	copy(out, c.duplicates)
	return out
}
