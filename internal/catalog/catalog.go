// Package catalog holds the fixed set of trail entries served by the site.
//
// A Catalog is built once at startup and never changes afterwards. Accessors
// return copies, so callers are free to modify what they get back.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
)

var (
	// ErrNotFound is returned by Find when no entry has the requested ID.
	ErrNotFound = errors.New("catalog: entry not found")
	// ErrEmptyCatalog is returned by New when no entries are supplied.
	ErrEmptyCatalog = errors.New("catalog: no entries")
	// ErrInvalidEntry is returned by New when an entry breaks an invariant.
	ErrInvalidEntry = errors.New("catalog: invalid entry")
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Entry is a single trail.
type Entry struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Location      string    `yaml:"location"`
	Distance      float64   `yaml:"distance"`       // kilometers
	ElevationGain float64   `yaml:"elevation_gain"` // meters
	Summary       string    `yaml:"summary"`        // markdown, optional
	Pictures      []Picture `yaml:"pictures"`
	Map           Map       `yaml:"map"`
}

// Picture references an image of the trail by ID.
type Picture struct {
	ID string `yaml:"id"`
}

// Map locates the trail and links to a map provider.
type Map struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Href      string  `yaml:"href"`
}

func (e Entry) clone() Entry {
	e.Pictures = slices.Clone(e.Pictures)
	return e
}

func (e Entry) validate() error {
	switch {
	case !idPattern.MatchString(e.ID):
		return fmt.Errorf("%w: id %q is not a lowercase slug", ErrInvalidEntry, e.ID)
	case e.Name == "":
		return fmt.Errorf("%w: %s: missing name", ErrInvalidEntry, e.ID)
	case !finite(e.Distance) || e.Distance < 0:
		return fmt.Errorf("%w: %s: distance %v is not a non-negative number", ErrInvalidEntry, e.ID, e.Distance)
	case !finite(e.ElevationGain) || e.ElevationGain < 0:
		return fmt.Errorf("%w: %s: elevation gain %v is not a non-negative number", ErrInvalidEntry, e.ID, e.ElevationGain)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Catalog is an immutable, ordered set of entries. The first entry is the
// featured one.
type Catalog struct {
	entries []Entry
}

// New validates entries and returns a Catalog preserving their order.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(entries))
	frozen := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidEntry, e.ID)
		}
		seen[e.ID] = struct{}{}
		frozen = append(frozen, e.clone())
	}
	return &Catalog{entries: frozen}, nil
}

// All returns every entry in catalog order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Featured returns the first entry.
func (c *Catalog) Featured() Entry {
	if len(c.entries) == 0 {
		panic(ErrEmptyCatalog)
	}
	return c.entries[0].clone()
}

// Popular returns every entry except the featured one, in catalog order.
func (c *Catalog) Popular() []Entry {
	featured := c.Featured().ID
	out := make([]Entry, 0, len(c.entries)-1)
	for _, e := range c.entries {
		if e.ID == featured {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

// Find returns the entry with the given ID.
func (c *Catalog) Find(id string) (Entry, error) {
	for _, e := range c.entries {
		if e.ID == id {
			return e.clone(), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}
