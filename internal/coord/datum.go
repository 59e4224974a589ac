package coord

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Ellipsoid is a reference ellipsoid given by its semi-major axis (meters)
// and flattening.
type Ellipsoid struct {
	A float64
	F float64
}

var (
	WGS84Ellipsoid = Ellipsoid{A: 6_378_137, F: 1 / 298.257223563}
	GRS80          = Ellipsoid{A: 6_378_137, F: 1 / 298.257222101}
	GRS67          = Ellipsoid{A: 6_378_160, F: 1 / 298.247167427}
	Bessel1841     = Ellipsoid{A: 6_377_397.155, F: 1 / 299.1528128}
)

// ES returns the first eccentricity squared.
func (e Ellipsoid) ES() float64 { return e.F * (2 - e.F) }

// Helmert is a three-parameter geocentric translation from a local datum to
// WGS84, in the sense of a proj4 "+towgs84=dx,dy,dz" term.
type Helmert struct {
	DX, DY, DZ float64
	Target     Ellipsoid
}

// FromWGS84 moves a WGS84 position (degrees) onto the local datum.
func (h *Helmert) FromWGS84(lon, lat float64) (float64, float64) {
	x, y, z := toGeocentric(WGS84Ellipsoid, lon, lat)
	return fromGeocentric(h.Target, x-h.DX, y-h.DY, z-h.DZ)
}

// ToWGS84 moves a local datum position (degrees) onto WGS84.
func (h *Helmert) ToWGS84(lon, lat float64) (float64, float64) {
	x, y, z := toGeocentric(h.Target, lon, lat)
	return fromGeocentric(WGS84Ellipsoid, x+h.DX, y+h.DY, z+h.DZ)
}

// toGeocentric converts a position on the ellipsoid surface to ECEF meters.
func toGeocentric(e Ellipsoid, lon, lat float64) (x, y, z float64) {
	phi, lam := lat*deg2rad, lon*deg2rad
	es := e.ES()
	sinPhi := math.Sin(phi)
	n := e.A / math.Sqrt(1-es*sinPhi*sinPhi)
	x = n * math.Cos(phi) * math.Cos(lam)
	y = n * math.Cos(phi) * math.Sin(lam)
	z = n * (1 - es) * sinPhi
	return
}

// fromGeocentric converts ECEF meters back to longitude/latitude in degrees.
// The ellipsoidal height is discarded.
func fromGeocentric(e Ellipsoid, x, y, z float64) (lon, lat float64) {
	es := e.ES()
	p := math.Hypot(x, y)
	lam := math.Atan2(y, x)
	phi := math.Atan2(z, p*(1-es))
	for i := 0; i < 10; i++ {
		sinPhi := math.Sin(phi)
		n := e.A / math.Sqrt(1-es*sinPhi*sinPhi)
		h := p/math.Cos(phi) - n
		next := math.Atan2(z, p*(1-es*n/(n+h)))
		if math.Abs(next-phi) < 1e-12 {
			phi = next
			break
		}
		phi = next
	}
	return lam * rad2deg, phi * rad2deg
}
