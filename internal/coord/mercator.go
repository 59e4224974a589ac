package coord

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// MaxMercatorLat is the latitude at which Web Mercator's square world ends.
const MaxMercatorLat = 85.05112877980659

// WebMercatorProj implements the Projection interface for EPSG:3857.
type WebMercatorProj struct{}

func (w *WebMercatorProj) Code() string { return "EPSG:3857" }

func (w *WebMercatorProj) FromWGS84(lon, lat float64) (x, y float64, err error) {
	if math.Abs(lat) > MaxMercatorLat {
		return 0, 0, errors.Newf("latitude %.6f outside web mercator range", lat)
	}
	p := project.WGS84.ToMercator(orb.Point{lon, lat})
	return p[0], p[1], nil
}

func (w *WebMercatorProj) ToWGS84(x, y float64) (lon, lat float64, err error) {
	p := project.Mercator.ToWGS84(orb.Point{x, y})
	return p[0], p[1], nil
}
