package coord

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Projection defines the interface for converting between WGS84 and a target CRS.
type Projection interface {
	// FromWGS84 converts WGS84 longitude/latitude (degrees) to CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64, err error)

	// ToWGS84 converts CRS coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64, err error)

	// Code returns the normalized identifier of this projection, e.g. "EPSG:3035".
	Code() string
}

// UnsupportedCRSError is returned when a CRS identifier cannot be resolved
// to a transform definition.
type UnsupportedCRSError struct {
	Code   string
	Reason string
	Err    error
}

func (e *UnsupportedCRSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported CRS %q: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("unsupported CRS %q: %s", e.Code, e.Reason)
}

func (e *UnsupportedCRSError) Unwrap() error { return e.Err }

// Registry resolves CRS identifiers to projections. Lookup order is native
// projections, UTM codes, proj4 definitions, then raw "+proj=" strings.
// A Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	definitions map[string]string
}

// NewRegistry returns a registry that knows the built-in projections plus the
// given proj4 definitions keyed by CRS code. Every definition is parsed and
// its transformer resolved up front. User definitions take precedence
// over built-in proj4 definitions but not over native projections.
func NewRegistry(definitions map[string]string) (*Registry, error) {
	defs := make(map[string]string, len(builtinDefinitions)+len(definitions))
	for code, def := range builtinDefinitions {
		defs[code] = def
	}
	for code, def := range definitions {
		norm := NormalizeCode(code)
		if norm == "" {
			return nil, errors.New("projection definition with empty code")
		}
		if strings.TrimSpace(def) == "" {
			return nil, errors.Newf("projection definition for %s is empty", norm)
		}
		def = strings.TrimSpace(def)
		if _, err := newProj4(norm, def); err != nil {
			return nil, errors.Wrapf(err, "projection definition for %s", norm)
		}
		defs[norm] = def
	}
	return &Registry{definitions: defs}, nil
}

var defaultRegistry = &Registry{definitions: builtinDefinitions}

// ForCode resolves code against the built-in registry.
func ForCode(code string) (Projection, error) {
	return defaultRegistry.Lookup(code)
}

// Lookup returns a Projection for the given CRS identifier.
// Returns an *UnsupportedCRSError if the identifier cannot be resolved.
func (r *Registry) Lookup(code string) (Projection, error) {
	norm := NormalizeCode(code)
	if norm == "" {
		return nil, &UnsupportedCRSError{Code: code, Reason: "empty identifier"}
	}
	if strings.HasPrefix(norm, "+") {
		return lookupProj4(norm, norm)
	}

	if p := native(norm); p != nil {
		return p, nil
	}
	if zone, south, ellps, ok := parseUTMCode(norm); ok {
		return lookupProj4(norm, utmDefinition(zone, south, ellps))
	}
	if def, ok := r.definitions[norm]; ok {
		return lookupProj4(norm, def)
	}
	return nil, &UnsupportedCRSError{Code: code, Reason: "no definition registered"}
}

func lookupProj4(code, definition string) (Projection, error) {
	p, err := newProj4(code, definition)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Codes returns the native codes followed by the proj4-defined codes in
// sorted order. The UTM code ranges are resolved dynamically and not listed.
func (r *Registry) Codes() []string {
	defined := make([]string, 0, len(r.definitions))
	for code := range r.definitions {
		defined = append(defined, code)
	}
	sort.Strings(defined)
	return append(append([]string(nil), nativeCodes...), defined...)
}

// NormalizeCode canonicalizes a CRS identifier: surrounding space is trimmed,
// the authority is upper-cased, and a bare number is read as an EPSG code.
// Raw proj4 strings are returned trimmed but otherwise untouched.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.HasPrefix(code, "+") {
		return code
	}
	if _, err := strconv.Atoi(code); err == nil {
		return "EPSG:" + code
	}
	authority, rest, ok := strings.Cut(code, ":")
	if !ok {
		return strings.ToUpper(code)
	}
	return strings.ToUpper(strings.TrimSpace(authority)) + ":" + strings.TrimSpace(rest)
}

var nativeCodes = []string{"EPSG:4326", "EPSG:3857", "EPSG:3035", "EPSG:23700", "EPSG:2056"}

func native(code string) Projection {
	switch code {
	case "EPSG:4326":
		return &WGS84Identity{}
	case "EPSG:3857":
		return &WebMercatorProj{}
	case "EPSG:3035":
		return NewLambertAzimuthal(code, GRS80, 52, 10, 4_321_000, 3_210_000)
	case "EPSG:23700":
		return NewObliqueMercator(code, GRS67,
			47.14439372222222, 19.04857177777778, 0.99993, 650_000, 200_000,
			&Helmert{DX: 52.17, DY: -71.82, DZ: -14.9, Target: GRS67})
	case "EPSG:2056":
		return NewObliqueMercator(code, Bessel1841,
			46.95240555555556, 7.439583333333333, 1, 2_600_000, 1_200_000,
			&Helmert{DX: 674.374, DY: 15.056, DZ: 405.346, Target: Bessel1841})
	default:
		return nil
	}
}

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64, err error) { return lon, lat, nil }
func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64, err error)   { return x, y, nil }
func (w *WGS84Identity) Code() string                                         { return "EPSG:4326" }
