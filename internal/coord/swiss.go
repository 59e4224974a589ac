package coord

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ObliqueMercator implements the Swiss oblique cylindrical projection
// ("somerc"), which is also the basis of the Hungarian EOV grid.
// The ellipsoid is first mapped conformally onto a sphere, which is then
// projected with an oblique Mercator centred on the origin.
//
// Used for EPSG:2056 (CH1903+ / LV95) and EPSG:23700 (HD72 / EOV).
// Reference: https://www.swisstopo.admin.ch/en/knowledge-facts/surveying-geodesy/reference-frames/local/lv95.html
type ObliqueMercator struct {
	code   string
	a      float64
	e      float64
	roneES float64
	lon0   float64
	x0, y0 float64
	datum  *Helmert

	c, k, kR     float64
	sinp0, cosp0 float64
}

// NewObliqueMercator derives the projection constants. lat0/lon0 are in
// degrees on the local datum; datum may be nil when the local datum is WGS84.
func NewObliqueMercator(code string, ell Ellipsoid, lat0, lon0, k0, x0, y0 float64, datum *Helmert) *ObliqueMercator {
	es := ell.ES()
	p := &ObliqueMercator{
		code:   code,
		a:      ell.A,
		e:      math.Sqrt(es),
		roneES: 1 / (1 - es),
		lon0:   lon0 * deg2rad,
		x0:     x0,
		y0:     y0,
		datum:  datum,
	}

	phi0 := lat0 * deg2rad
	cp := math.Cos(phi0)
	cp *= cp
	p.c = math.Sqrt(1 + es*cp*cp*p.roneES)
	sp := math.Sin(phi0)
	p.sinp0 = sp / p.c
	phip0 := math.Asin(p.sinp0)
	p.cosp0 = math.Cos(phip0)
	sp *= p.e
	p.k = math.Log(math.Tan(math.Pi/4+0.5*phip0)) -
		p.c*(math.Log(math.Tan(math.Pi/4+0.5*phi0))-0.5*p.e*math.Log((1+sp)/(1-sp)))
	p.kR = k0 * math.Sqrt(1-es) / (1 - sp*sp)
	return p
}

func (p *ObliqueMercator) Code() string { return p.code }

// FromWGS84 converts WGS84 longitude/latitude (degrees) to easting/northing.
func (p *ObliqueMercator) FromWGS84(lon, lat float64) (x, y float64, err error) {
	if math.Abs(lat) >= 90 {
		return 0, 0, errors.Newf("latitude %.6f not projectable in %s", lat, p.code)
	}
	if p.datum != nil {
		lon, lat = p.datum.FromWGS84(lon, lat)
	}
	phi := lat * deg2rad
	lam := lon*deg2rad - p.lon0

	// Conformal sphere
	sp := p.e * math.Sin(phi)
	phip := 2*math.Atan(math.Exp(p.c*(math.Log(math.Tan(math.Pi/4+0.5*phi))-0.5*p.e*math.Log((1+sp)/(1-sp)))+p.k)) - math.Pi/2
	lamp := p.c * lam

	// Rotate onto the oblique cylinder
	cp := math.Cos(phip)
	phipp := asinClamped(p.cosp0*math.Sin(phip) - p.sinp0*cp*math.Cos(lamp))
	lampp := asinClamped(cp * math.Sin(lamp) / math.Cos(phipp))

	x = p.a*p.kR*lampp + p.x0
	y = p.a*p.kR*math.Log(math.Tan(math.Pi/4+0.5*phipp)) + p.y0
	return x, y, nil
}

// ToWGS84 converts easting/northing to WGS84 longitude/latitude (degrees).
func (p *ObliqueMercator) ToWGS84(x, y float64) (lon, lat float64, err error) {
	xn := (x - p.x0) / p.a
	yn := (y - p.y0) / p.a

	phipp := 2 * (math.Atan(math.Exp(yn/p.kR)) - math.Pi/4)
	lampp := xn / p.kR
	cp := math.Cos(phipp)
	phip := asinClamped(p.cosp0*math.Sin(phipp) + p.sinp0*cp*math.Cos(lampp))
	lamp := asinClamped(cp * math.Sin(lampp) / math.Cos(phip))

	con := (p.k - math.Log(math.Tan(math.Pi/4+0.5*phip))) / p.c
	converged := false
	for i := 0; i < 15; i++ {
		esp := p.e * math.Sin(phip)
		delp := (con + math.Log(math.Tan(math.Pi/4+0.5*phip)) - 0.5*p.e*math.Log((1+esp)/(1-esp))) *
			(1 - esp*esp) * math.Cos(phip) * p.roneES
		phip -= delp
		if math.Abs(delp) < 1e-12 {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, errors.Newf("inverse %s did not converge at (%.3f, %.3f)", p.code, x, y)
	}

	lon = (lamp/p.c + p.lon0) * rad2deg
	lat = phip * rad2deg
	if p.datum != nil {
		lon, lat = p.datum.ToWGS84(lon, lat)
	}
	return lon, lat, nil
}

func asinClamped(v float64) float64 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return math.Asin(v)
}
