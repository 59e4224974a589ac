package crs

import (
	"github.com/cockroachdb/errors"

	"github.com/pspoerri/optimalcrs/internal/coord"
)

// Projections resolves CRS codes to projections. *coord.Registry implements it.
type Projections interface {
	Lookup(code string) (coord.Projection, error)
}

// ProjectionsFunc adapts a lookup function to Projections.
type ProjectionsFunc func(code string) (coord.Projection, error)

func (f ProjectionsFunc) Lookup(code string) (coord.Projection, error) { return f(code) }

// Reprojector transforms WGS84 points into the CRS of a Choice.
type Reprojector struct {
	projections Projections
}

// NewReprojector returns a Reprojector backed by p, or by the built-in
// coord registry when p is nil.
func NewReprojector(p Projections) *Reprojector {
	if p == nil {
		p = ProjectionsFunc(coord.ForCode)
	}
	return &Reprojector{projections: p}
}

// Reproject transforms points into the CRS described by choice and returns
// them together with the code that was applied. Output order and length
// match the input.
//
// A WGS84 choice returns a copy of the input with identical values. A UTM
// choice takes its zone from the first point's longitude and its hemisphere
// from that point's latitude. Codes the registry cannot resolve fail with an
// error marked ErrUnsupportedCRS; there is no fallback to WGS84.
func (r *Reprojector) Reproject(points []Point, choice Choice) ([]Point, string, error) {
	if err := validatePoints(points); err != nil {
		return nil, "", err
	}

	var code string
	switch choice.Kind {
	case KindWGS84:
		out := make([]Point, len(points))
		copy(out, points)
		return out, "EPSG:4326", nil
	case KindUTM:
		if len(points) == 0 {
			return nil, "", errors.Mark(errors.New("UTM zone needs at least one point"), ErrInvalidPoint)
		}
		zone, err := zoneOf(points[0].Lon(), 0)
		if err != nil {
			return nil, "", err
		}
		code = coord.UTMCode(zone, points[0].Lat() < 0)
	default:
		code = choice.Code
	}

	proj, err := r.projections.Lookup(code)
	if err != nil {
		return nil, "", errors.Mark(err, ErrUnsupportedCRS)
	}

	out := make([]Point, len(points))
	for i, p := range points {
		x, y, err := proj.FromWGS84(p.Lon(), p.Lat())
		if err != nil {
			return nil, "", errors.Wrapf(err, "projecting point %d to %s", i, proj.Code())
		}
		out[i] = Point{X: x, Y: y}
	}
	return out, proj.Code(), nil
}
