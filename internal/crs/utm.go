package crs

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ZoneOf returns the UTM zone (1-60) containing the longitude.
// Longitudes outside [-180, 180) fail with *InvalidLongitudeError.
func ZoneOf(lon float64) (int, error) {
	return zoneOf(lon, -1)
}

func zoneOf(lon float64, index int) (int, error) {
	if math.IsNaN(lon) || lon < -180 || lon >= 180 {
		return 0, errors.Mark(&InvalidLongitudeError{Index: index, Lon: lon}, ErrInvalidPoint)
	}
	return int(math.Floor((lon+180)/6)) + 1, nil
}

// SameZone reports whether all points fall in one UTM zone. It is true for a
// single point and for no points.
func SameZone(points []Point) (bool, error) {
	if len(points) == 0 {
		return true, nil
	}
	first, err := zoneOf(points[0].Lon(), 0)
	if err != nil {
		return false, err
	}
	for i, p := range points[1:] {
		zone, err := zoneOf(p.Lon(), i+1)
		if err != nil {
			return false, err
		}
		if zone != first {
			return false, nil
		}
	}
	return true, nil
}
