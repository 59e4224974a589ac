package crs

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Mapping maps region names to CRS codes. A nil Mapping means the tier it
// belongs to is not evaluated.
type Mapping map[string]string

// Names returns the mapped region names in sorted order.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegionSet is a set of region names.
type RegionSet map[string]struct{}

func (s RegionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s RegionSet) Len() int { return len(s) }

// Names returns the members in sorted order.
func (s RegionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// only returns the single member of a one-element set.
func (s RegionSet) only() (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	for name := range s {
		return name, true
	}
	return "", false
}

// Boundaries is a source of region polygons at one granularity.
type Boundaries interface {
	// Contains reports whether (lon, lat) lies inside the named region and
	// fails for names the source has no boundary for.
	Contains(name string, lon, lat float64) (bool, error)
}

// Classify returns the candidate regions that contain at least one point.
// Only keys of candidates are tested, so names outside the mapping are never
// returned. A region needs a single point inside it to match; whether the
// match is exclusive is left to the caller.
//
// A failed boundary lookup is returned marked with ErrUnknownRegion.
// With no points no lookups are made and the result is empty.
func Classify(points []Point, candidates Mapping, source Boundaries) (RegionSet, error) {
	matched := make(RegionSet)
	if len(points) == 0 || len(candidates) == 0 {
		return matched, nil
	}
	if source == nil {
		return nil, errors.Mark(errors.New("no boundary source configured"), ErrUnknownRegion)
	}

	for _, name := range candidates.Names() {
		for _, p := range points {
			in, err := source.Contains(name, p.Lon(), p.Lat())
			if err != nil {
				return nil, errors.Mark(errors.Wrapf(err, "classifying %q", name), ErrUnknownRegion)
			}
			if in {
				matched[name] = struct{}{}
				break
			}
		}
	}
	return matched, nil
}
