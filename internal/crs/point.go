package crs

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// Point is an ordered coordinate pair. Geographic points hold longitude in X
// and latitude in Y (WGS84 degrees); projected points hold easting in X and
// northing in Y (CRS units).
type Point struct {
	X, Y float64
}

// LatLon builds a geographic point from latitude and longitude in degrees.
func LatLon(lat, lon float64) Point { return Point{X: lon, Y: lat} }

func (p Point) Lat() float64 { return p.Y }
func (p Point) Lon() float64 { return p.X }

var (
	// ErrInvalidPoint marks errors caused by malformed input coordinates.
	ErrInvalidPoint = errors.New("invalid point")
	// ErrUnknownRegion marks failed boundary lookups for mapped region names.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnsupportedCRS marks CRS identifiers the projection registry cannot resolve.
	ErrUnsupportedCRS = errors.New("unsupported CRS")
)

// InvalidLongitudeError is returned for longitudes outside [-180, 180).
type InvalidLongitudeError struct {
	Index int // position in the input, -1 when not from a point slice
	Lon   float64
}

func (e *InvalidLongitudeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("longitude %v outside [-180, 180)", e.Lon)
	}
	return fmt.Sprintf("point %d: longitude %v outside [-180, 180)", e.Index, e.Lon)
}

// InvalidLatitudeError is returned for latitudes outside [-90, 90].
type InvalidLatitudeError struct {
	Index int
	Lat   float64
}

func (e *InvalidLatitudeError) Error() string {
	return fmt.Sprintf("point %d: latitude %v outside [-90, 90]", e.Index, e.Lat)
}

func validatePoints(points []Point) error {
	for i, p := range points {
		if _, err := zoneOf(p.Lon(), i); err != nil {
			return err
		}
		if lat := p.Lat(); math.IsNaN(lat) || lat < -90 || lat > 90 {
			return errors.Mark(&InvalidLatitudeError{Index: i, Lat: lat}, ErrInvalidPoint)
		}
	}
	return nil
}
