package region

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Level is the granularity of a boundary layer.
type Level string

const (
	LevelCountry   Level = "country"
	LevelContinent Level = "continent"
)

// Feature property keys read from the GeoJSON dataset.
const (
	NameProperty  = "name"
	LevelProperty = "level"
)

// Natural Earth admin-0 attributes. Features without a level property are
// read as countries named by NAME (or ADMIN) and also merged into the
// continent named by CONTINENT.
var (
	naturalEarthName      = []string{"NAME", "ADMIN", "name_en"}
	naturalEarthContinent = []string{"CONTINENT", "continent"}
)

// UnknownRegionError is returned when a region name has no boundary in a layer.
type UnknownRegionError struct {
	Level Level
	Name  string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("no %s boundary named %q", e.Level, e.Name)
}

// Layer holds the boundaries of one granularity, keyed by region name.
// A Layer is read-only after loading and safe for concurrent use.
type Layer struct {
	level   Level
	regions map[string]orb.MultiPolygon
	bounds  map[string]orb.Bound
}

func newLayer(level Level) *Layer {
	return &Layer{
		level:   level,
		regions: make(map[string]orb.MultiPolygon),
		bounds:  make(map[string]orb.Bound),
	}
}

func (l *Layer) Level() Level { return l.level }

// Len returns the number of named regions.
func (l *Layer) Len() int { return len(l.regions) }

// Names returns the region names in sorted order.
func (l *Layer) Names() []string {
	names := make([]string, 0, len(l.regions))
	for name := range l.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the layer has a boundary for name.
func (l *Layer) Has(name string) bool {
	_, ok := l.regions[name]
	return ok
}

// Contains reports whether the WGS84 position lies inside the named region.
// Points on a boundary edge may fall on either side.
func (l *Layer) Contains(name string, lon, lat float64) (bool, error) {
	mp, ok := l.regions[name]
	if !ok {
		return false, &UnknownRegionError{Level: l.level, Name: name}
	}
	pt := orb.Point{lon, lat}
	if !l.bounds[name].Contains(pt) {
		return false, nil
	}
	return planar.MultiPolygonContains(mp, pt), nil
}

func (l *Layer) add(name string, g orb.Geometry) error {
	var polys orb.MultiPolygon
	switch g := g.(type) {
	case orb.Polygon:
		polys = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		polys = g
	default:
		return errors.Newf("%s %q: unsupported geometry %s", l.level, name, g.GeoJSONType())
	}
	if len(polys) == 0 {
		return errors.Newf("%s %q: empty geometry", l.level, name)
	}

	merged := append(l.regions[name], polys...)
	l.regions[name] = merged
	l.bounds[name] = merged.Bound()
	return nil
}

// Set is a boundary dataset split into country and continent layers.
// Names are unique within a layer; the same name may appear in both.
type Set struct {
	Countries  *Layer
	Continents *Layer
}

// Parse decodes a GeoJSON FeatureCollection. A feature needs a "name" and a
// "level" ("country" or "continent") property, or the NAME and CONTINENT
// attributes of a Natural Earth admin-0 countries file, and a Polygon or
// MultiPolygon geometry. Features sharing a name and level are merged.
func Parse(data []byte) (*Set, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "decoding boundary collection")
	}

	s := &Set{
		Countries:  newLayer(LevelCountry),
		Continents: newLayer(LevelContinent),
	}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, errors.Newf("feature %d: missing geometry", i)
		}

		level := Level(stringProp(f.Properties, LevelProperty))
		if level == "" {
			if err := s.addNaturalEarth(i, f); err != nil {
				return nil, err
			}
			continue
		}

		name := stringProp(f.Properties, NameProperty)
		if name == "" {
			return nil, errors.Newf("feature %d: missing %q property", i, NameProperty)
		}
		var layer *Layer
		switch level {
		case LevelCountry:
			layer = s.Countries
		case LevelContinent:
			layer = s.Continents
		default:
			return nil, errors.Newf("feature %d (%s): %q must be %q or %q",
				i, name, LevelProperty, LevelCountry, LevelContinent)
		}
		if err := layer.add(name, f.Geometry); err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}
	}
	return s, nil
}

func (s *Set) addNaturalEarth(i int, f *geojson.Feature) error {
	name := firstStringProp(f.Properties, append([]string{NameProperty}, naturalEarthName...))
	continent := firstStringProp(f.Properties, naturalEarthContinent)
	if name == "" || continent == "" {
		return errors.Newf("feature %d: needs a %q property, or Natural Earth NAME and CONTINENT attributes",
			i, LevelProperty)
	}
	if err := s.Countries.add(name, f.Geometry); err != nil {
		return errors.Wrapf(err, "feature %d", i)
	}
	if err := s.Continents.add(continent, f.Geometry); err != nil {
		return errors.Wrapf(err, "feature %d", i)
	}
	return nil
}

// Load reads and parses a GeoJSON boundary collection.
func Load(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading boundary collection")
	}
	return Parse(data)
}

// LoadFile parses the GeoJSON boundary collection at path.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening boundaries %s", path)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading boundaries %s", path)
	}
	return s, nil
}

//go:embed data/boundaries.geojson
var defaultData []byte

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the embedded coarse boundary dataset. Its polygons are
// simplified outlines meant for choosing a CRS, not for cartography.
func Default() *Set {
	defaultOnce.Do(func() {
		s, err := Parse(defaultData)
		if err != nil {
			panic(fmt.Sprintf("region: embedded boundaries: %v", err))
		}
		defaultSet = s
	})
	return defaultSet
}

func firstStringProp(props geojson.Properties, keys []string) string {
	for _, key := range keys {
		if v := stringProp(props, key); v != "" {
			return v
		}
	}
	return ""
}

func stringProp(props geojson.Properties, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
