package coord

import (
	"math"

	"github.com/cockroachdb/errors"
)

// LambertAzimuthal implements the oblique ellipsoidal Lambert azimuthal
// equal-area projection (Snyder, "Map Projections: A Working Manual", p. 187).
// Used for EPSG:3035 (ETRS89-extended / LAEA Europe).
type LambertAzimuthal struct {
	code       string
	a          float64
	e, es      float64
	lat0, lon0 float64
	x0, y0     float64

	qp, rq, d        float64
	sinB1, cosB1     float64
	apa0, apa1, apa2 float64
}

// NewLambertAzimuthal derives the projection constants for an origin at
// lat0/lon0 (degrees) with the given false easting/northing.
func NewLambertAzimuthal(code string, ell Ellipsoid, lat0, lon0, x0, y0 float64) *LambertAzimuthal {
	es := ell.ES()
	p := &LambertAzimuthal{
		code: code,
		a:    ell.A,
		e:    math.Sqrt(es),
		es:   es,
		lat0: lat0,
		lon0: lon0 * deg2rad,
		x0:   x0,
		y0:   y0,
	}
	p.qp = p.q(1)
	p.rq = p.a * math.Sqrt(p.qp/2)

	phi1 := lat0 * deg2rad
	sinPhi1 := math.Sin(phi1)
	beta1 := math.Asin(p.q(sinPhi1) / p.qp)
	p.sinB1, p.cosB1 = math.Sincos(beta1)
	m1 := math.Cos(phi1) / math.Sqrt(1-es*sinPhi1*sinPhi1)
	p.d = p.a * m1 / (p.rq * p.cosB1)

	// Authalic to geodetic latitude series.
	es2 := es * es
	es3 := es2 * es
	p.apa0 = es/3 + 31*es2/180 + 517*es3/5040
	p.apa1 = 23*es2/360 + 251*es3/3780
	p.apa2 = 761 * es3 / 45360
	return p
}

func (p *LambertAzimuthal) Code() string { return p.code }

// q is Snyder's eq. 3-12 as a function of sin(phi).
func (p *LambertAzimuthal) q(sinPhi float64) float64 {
	esin := p.e * sinPhi
	return (1 - p.es) * (sinPhi/(1-esin*esin) - 1/(2*p.e)*math.Log((1-esin)/(1+esin)))
}

func (p *LambertAzimuthal) FromWGS84(lon, lat float64) (x, y float64, err error) {
	ratio := p.q(math.Sin(lat*deg2rad)) / p.qp
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	sinB, cosB := math.Sincos(math.Asin(ratio))
	dl := lon*deg2rad - p.lon0
	sinDl, cosDl := math.Sincos(dl)

	denom := 1 + p.sinB1*sinB + p.cosB1*cosB*cosDl
	if denom < 1e-12 {
		return 0, 0, errors.Newf("point (%.6f, %.6f) is antipodal to the %s origin", lon, lat, p.code)
	}
	b := p.rq * math.Sqrt(2/denom)

	x = p.x0 + b*p.d*cosB*sinDl
	y = p.y0 + (b/p.d)*(p.cosB1*sinB-p.sinB1*cosB*cosDl)
	return x, y, nil
}

func (p *LambertAzimuthal) ToWGS84(x, y float64) (lon, lat float64, err error) {
	x -= p.x0
	y -= p.y0
	rho := math.Hypot(x/p.d, p.d*y)
	if rho < 1e-10 {
		return p.lon0 * rad2deg, p.lat0, nil
	}
	arg := rho / (2 * p.rq)
	if arg > 1 {
		return 0, 0, errors.Newf("(%.3f, %.3f) outside the %s domain", x+p.x0, y+p.y0, p.code)
	}
	ce := 2 * math.Asin(arg)
	sinCe, cosCe := math.Sincos(ce)

	beta := asinClamped(cosCe*p.sinB1 + p.d*y*sinCe*p.cosB1/rho)
	lam := p.lon0 + math.Atan2(x*sinCe, p.d*rho*p.cosB1*cosCe-p.d*p.d*y*p.sinB1*sinCe)
	phi := beta + p.apa0*math.Sin(2*beta) + p.apa1*math.Sin(4*beta) + p.apa2*math.Sin(6*beta)
	return lam * rad2deg, phi * rad2deg, nil
}
