package crs

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/pspoerri/optimalcrs/internal/metrics"
	"github.com/pspoerri/optimalcrs/internal/region"
)

// Result is the outcome of Convert.
type Result struct {
	CRS Choice
	// Resolved is the concrete code applied to the points, e.g. "EPSG:32631"
	// for a UTM choice or "EPSG:4326" for WGS84.
	Resolved string
	Points   []Point
}

// Identifier returns "wgs84", "utm", or the mapped CRS code.
func (r Result) Identifier() string { return r.CRS.Identifier() }

// Selector picks a CRS for a point set and reprojects the points into it.
// It holds no mutable state and is safe for concurrent use.
type Selector struct {
	countries   Boundaries
	continents  Boundaries
	reprojector *Reprojector
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger for selection decisions (logged at debug level).
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) { s.logger = l }
}

// WithProjections sets the projection registry used for reprojection.
func WithProjections(p Projections) Option {
	return func(s *Selector) { s.reprojector = NewReprojector(p) }
}

// WithMetrics records selection outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector returns a Selector classifying against the given country and
// continent boundary sources. Either may be nil, in which case supplying a
// mapping for that tier fails with ErrUnknownRegion.
func NewSelector(countries, continents Boundaries, opts ...Option) *Selector {
	s := &Selector{
		countries:   countries,
		continents:  continents,
		reprojector: NewReprojector(nil),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromRegions returns a Selector over the layers of a boundary set.
func FromRegions(set *region.Set, opts ...Option) *Selector {
	return NewSelector(set.Countries, set.Continents, opts...)
}

// Default returns a Selector over the embedded boundary dataset and the
// built-in projection registry.
func Default(opts ...Option) *Selector {
	return FromRegions(region.Default(), opts...)
}

// DetermineCountries returns the mapped countries containing at least one point.
func (s *Selector) DetermineCountries(points []Point, countries Mapping) (RegionSet, error) {
	return Classify(points, countries, s.countries)
}

// DetermineContinents returns the mapped continents containing at least one point.
func (s *Selector) DetermineContinents(points []Point, continents Mapping) (RegionSet, error) {
	return Classify(points, continents, s.continents)
}

// Select picks the CRS for points. Tiers are tried in order and the first
// one that resolves wins:
//
//  1. Country, when country is non-nil: exactly one mapped country contains
//     points → that country's code.
//  2. Continent, when continent is non-nil: exactly one mapped continent
//     contains points → UTM if all points share a UTM zone, otherwise the
//     continent's code.
//  3. WGS84.
//
// A tier with no match or with several matches does not resolve: points
// straddling two mapped countries fall through to the continent tier instead
// of picking one country arbitrarily. This is the only case where ambiguity
// is not reported as an error.
//
// With no points the result is WGS84.
func (s *Selector) Select(points []Point, country, continent Mapping) (Choice, error) {
	if err := validatePoints(points); err != nil {
		return Choice{}, err
	}

	if country != nil {
		matched, err := s.DetermineCountries(points, country)
		if err != nil {
			return Choice{}, err
		}
		if name, ok := matched.only(); ok {
			c := Choice{Kind: KindCountry, Region: name, Code: country[name]}
			s.logger.Debug("crs selected", "tier", KindCountry.String(), "region", name, "crs", c.Code)
			return c, nil
		}
		s.logger.Debug("country tier unresolved", "matched", matched.Names())
	}

	if continent != nil {
		matched, err := s.DetermineContinents(points, continent)
		if err != nil {
			return Choice{}, err
		}
		if name, ok := matched.only(); ok {
			same, err := SameZone(points)
			if err != nil {
				return Choice{}, err
			}
			if same {
				s.logger.Debug("crs selected", "tier", KindUTM.String(), "region", name)
				return Choice{Kind: KindUTM, Region: name}, nil
			}
			c := Choice{Kind: KindContinent, Region: name, Code: continent[name]}
			s.logger.Debug("crs selected", "tier", KindContinent.String(), "region", name, "crs", c.Code)
			return c, nil
		}
		s.logger.Debug("continent tier unresolved", "matched", matched.Names())
	}

	s.logger.Debug("crs selected", "tier", KindWGS84.String())
	return Choice{Kind: KindWGS84}, nil
}

// Convert selects a CRS for points and reprojects them into it.
func (s *Selector) Convert(points []Point, country, continent Mapping) (Result, error) {
	choice, err := s.Select(points, country, continent)
	if err != nil {
		s.metrics.Failed(failureReason(err))
		return Result{}, err
	}
	out, resolved, err := s.reprojector.Reproject(points, choice)
	if err != nil {
		s.metrics.Failed(failureReason(err))
		return Result{}, err
	}
	s.metrics.Selected(choice.Kind.String())
	s.metrics.Converted(len(out))
	s.logger.Debug("points reprojected", "crs", choice.Identifier(), "resolved", resolved, "points", len(out))
	return Result{CRS: choice, Resolved: resolved, Points: out}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPoint):
		return "invalid_point"
	case errors.Is(err, ErrUnknownRegion):
		return "unknown_region"
	case errors.Is(err, ErrUnsupportedCRS):
		return "unsupported_crs"
	default:
		return "other"
	}
}
