package coord

import (
	"github.com/ctessum/geom/proj"
)

const wgs84Definition = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"

// builtinDefinitions are proj4 strings for CRS codes without a native
// implementation. Entries on ETRS89 use GRS80 without a datum shift.
var builtinDefinitions = map[string]string{
	// SRB_ETRS89 / UTM zone 34N
	"EPSG:8682": "+proj=utm +zone=34 +ellps=GRS80 +units=m +no_defs",
	// ETRS89 / Poland CS92
	"EPSG:2180": "+proj=tmerc +lat_0=0 +lon_0=19 +k=0.9993 +x_0=500000 +y_0=-5300000 +ellps=GRS80 +units=m +no_defs",
	// SWEREF99 TM
	"EPSG:3006": "+proj=utm +zone=33 +ellps=GRS80 +units=m +no_defs",
	// ETRS89 / Austria Lambert
	"EPSG:3416": "+proj=lcc +lat_1=49 +lat_2=46 +lat_0=47.5 +lon_0=13.3333333333333 +x_0=400000 +y_0=400000 +ellps=GRS80 +units=m +no_defs",
	// RGF93 / Lambert-93
	"EPSG:2154": "+proj=lcc +lat_1=49 +lat_2=44 +lat_0=46.5 +lon_0=3 +x_0=700000 +y_0=6600000 +ellps=GRS80 +units=m +no_defs",
	// North America Lambert Conformal Conic
	"ESRI:102009": "+proj=lcc +lat_1=20 +lat_2=60 +lat_0=40 +lon_0=-96 +x_0=0 +y_0=0 +ellps=GRS80 +units=m +no_defs",
	// North America Albers Equal Area Conic
	"ESRI:102008": "+proj=aea +lat_1=20 +lat_2=60 +lat_0=40 +lon_0=-96 +x_0=0 +y_0=0 +ellps=GRS80 +units=m +no_defs",
}

// proj4Projection delegates to github.com/ctessum/geom/proj.
type proj4Projection struct {
	code    string
	forward proj.Transformer
	inverse proj.Transformer
}

func newProj4(code, definition string) (*proj4Projection, error) {
	src, err := proj.Parse(wgs84Definition)
	if err != nil {
		return nil, &UnsupportedCRSError{Code: code, Reason: "parsing WGS84 definition", Err: err}
	}
	dst, err := proj.Parse(definition)
	if err != nil {
		return nil, &UnsupportedCRSError{Code: code, Reason: "parsing proj4 definition", Err: err}
	}
	// Parse accepts any +proj name; the transformer is only looked up when
	// a point is transformed.
	if _, _, err := dst.Transformers(); err != nil {
		return nil, &UnsupportedCRSError{Code: code, Reason: "no transformer for projection", Err: err}
	}
	fwd, err := src.NewTransform(dst)
	if err != nil {
		return nil, &UnsupportedCRSError{Code: code, Reason: "building forward transform", Err: err}
	}
	inv, err := dst.NewTransform(src)
	if err != nil {
		return nil, &UnsupportedCRSError{Code: code, Reason: "building inverse transform", Err: err}
	}
	// NewTransform returns nil when both references are equal.
	if fwd == nil {
		fwd = identityTransform
	}
	if inv == nil {
		inv = identityTransform
	}
	return &proj4Projection{code: code, forward: fwd, inverse: inv}, nil
}

func identityTransform(x, y float64) (float64, float64, error) { return x, y, nil }

func (p *proj4Projection) Code() string { return p.code }

func (p *proj4Projection) FromWGS84(lon, lat float64) (x, y float64, err error) {
	return p.forward(lon, lat)
}

func (p *proj4Projection) ToWGS84(x, y float64) (lon, lat float64, err error) {
	return p.inverse(x, y)
}
