package coord

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestForCode(t *testing.T) {
	tests := []struct {
		code     string
		wantErr  bool
		wantCode string
	}{
		{"EPSG:4326", false, "EPSG:4326"},
		{"epsg:3857", false, "EPSG:3857"},
		{"3035", false, "EPSG:3035"},
		{" EPSG:23700 ", false, "EPSG:23700"},
		{"EPSG:2056", false, "EPSG:2056"},
		{"EPSG:32633", false, "EPSG:32633"},
		{"EPSG:32733", false, "EPSG:32733"},
		{"EPSG:25832", false, "EPSG:25832"},
		{"EPSG:8682", false, "EPSG:8682"},
		{"ESRI:102009", false, "ESRI:102009"},
		{"EPSG:32661", true, ""}, // UPS north, not a UTM zone
		{"EPSG:999999", true, ""},
		{"utm", true, ""},
		{"", true, ""},
	}
	for _, tt := range tests {
		p, err := ForCode(tt.code)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForCode(%q) = %v, want error", tt.code, p.Code())
				continue
			}
			var unsupported *UnsupportedCRSError
			if !errors.As(err, &unsupported) {
				t.Errorf("ForCode(%q) error %v is not *UnsupportedCRSError", tt.code, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ForCode(%q): %v", tt.code, err)
		}
		if got := p.Code(); got != tt.wantCode {
			t.Errorf("ForCode(%q).Code() = %q, want %q", tt.code, got, tt.wantCode)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"EPSG:4326", "EPSG:4326"},
		{"epsg:4326", "EPSG:4326"},
		{"4326", "EPSG:4326"},
		{"esri: 102009", "ESRI:102009"},
		{"  +proj=utm +zone=33  ", "+proj=utm +zone=33"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWGS84Identity(t *testing.T) {
	w := &WGS84Identity{}

	if w.Code() != "EPSG:4326" {
		t.Errorf("WGS84Identity.Code() = %q, want EPSG:4326", w.Code())
	}

	lon, lat := 19.5033, 47.1625
	x, y, err := w.FromWGS84(lon, lat)
	if err != nil || x != lon || y != lat {
		t.Errorf("FromWGS84(%v, %v) = (%v, %v, %v), want input unchanged", lon, lat, x, y, err)
	}
	gotLon, gotLat, err := w.ToWGS84(lon, lat)
	if err != nil || gotLon != lon || gotLat != lat {
		t.Errorf("ToWGS84(%v, %v) = (%v, %v, %v), want input unchanged", lon, lat, gotLon, gotLat, err)
	}
}

// Reference values in projected coordinates. Tolerances cover the
// three-parameter datum shifts and published rounding.
func TestProjectionReferencePoints(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		lon, lat float64
		x, y     float64
		tolM     float64
	}{
		{"LAEA Europe origin", "EPSG:3035", 10, 52, 4_321_000, 3_210_000, 1e-6},
		{"LV95 origin (Bern)", "EPSG:2056", 7.438632, 46.951083, 2_600_000, 1_200_000, 5},
		{"LAEA Europe Paris", "EPSG:3035", 2.3514, 48.8575, 3_760_723.7, 2_889_590.5, 1},
		{"EOV Budapest", "EPSG:23700", 19.040236, 47.497913, 649_457, 239_331, 5},
		{"UTM 31N Paris", "EPSG:32631", 2.3514, 48.8575, 452_424.7, 5_411_817.7, 1},
		{"UTM 31N on central meridian", "EPSG:32631", 3, 0, 500_000, 0, 1e-3},
		{"UTM 31S on central meridian", "EPSG:32731", 3, 0, 500_000, 10_000_000, 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForCode(tt.code)
			if err != nil {
				t.Fatalf("ForCode(%q): %v", tt.code, err)
			}
			x, y, err := p.FromWGS84(tt.lon, tt.lat)
			if err != nil {
				t.Fatalf("FromWGS84: %v", err)
			}
			if d := math.Abs(x - tt.x); d > tt.tolM {
				t.Errorf("x = %.3f, want ~%.3f (delta=%.3f > tol=%.3f)", x, tt.x, d, tt.tolM)
			}
			if d := math.Abs(y - tt.y); d > tt.tolM {
				t.Errorf("y = %.3f, want ~%.3f (delta=%.3f > tol=%.3f)", y, tt.y, d, tt.tolM)
			}
		})
	}
}

// TestProjectionRoundTrip verifies that ToWGS84(FromWGS84(lon, lat)) ≈ (lon, lat).
func TestProjectionRoundTrip(t *testing.T) {
	europe := [][2]float64{
		{19.5033, 47.1625},     // central Hungary
		{20.149143, 46.241443}, // Szeged
		{8.5417, 47.3769},      // Zurich
		{7.4474, 46.9480},      // Bern
		{16.3738, 48.2082},     // Vienna
	}
	// Transverse Mercator series are only tight within a few degrees of
	// the central meridian, so those codes get nearby points.
	hungary := [][2]float64{
		{19.5033, 47.1625},
		{20.149143, 46.241443},
		{21.6273, 47.5316}, // Debrecen
	}
	zone33 := [][2]float64{
		{16.3738, 48.2082}, // Vienna
		{14.4378, 50.0755}, // Prague
	}
	eastCoast := [][2]float64{
		{-74.0060, 40.7128}, // New York
		{-77.0369, 38.9072}, // Washington
	}
	northAmerica := append([][2]float64{
		{-122.4194, 37.7749}, // San Francisco
		{-87.6298, 41.8781},  // Chicago
	}, eastCoast...)

	tests := []struct {
		code   string
		points [][2]float64
	}{
		{"EPSG:4326", europe},
		{"EPSG:3857", europe},
		{"EPSG:3035", europe},
		{"EPSG:23700", europe},
		{"EPSG:2056", europe},
		{"EPSG:32633", zone33},
		{"EPSG:8682", hungary},
		{"EPSG:2180", hungary},
		{"ESRI:102009", northAmerica},
		{"EPSG:32618", eastCoast},
	}

	for _, tt := range tests {
		p, err := ForCode(tt.code)
		if err != nil {
			t.Fatalf("ForCode(%q): %v", tt.code, err)
		}
		for _, pt := range tt.points {
			lon, lat := pt[0], pt[1]
			x, y, err := p.FromWGS84(lon, lat)
			if err != nil {
				t.Fatalf("%s FromWGS84(%.4f, %.4f): %v", tt.code, lon, lat, err)
			}
			gotLon, gotLat, err := p.ToWGS84(x, y)
			if err != nil {
				t.Fatalf("%s ToWGS84(%.3f, %.3f): %v", tt.code, x, y, err)
			}
			if math.Abs(gotLon-lon) > 1e-6 || math.Abs(gotLat-lat) > 1e-6 {
				t.Errorf("%s round-trip (%.6f, %.6f) -> (%.3f, %.3f) -> (%.6f, %.6f)",
					tt.code, lon, lat, x, y, gotLon, gotLat)
			}
		}
	}
}

func TestNewRegistry_UserDefinitions(t *testing.T) {
	r, err := NewRegistry(map[string]string{
		"local:grid": "+proj=tmerc +lat_0=0 +lon_0=19 +k=1 +x_0=500000 +y_0=0 +ellps=GRS80 +units=m +no_defs",
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	p, err := r.Lookup("LOCAL:grid")
	if err != nil {
		t.Fatalf("Lookup(LOCAL:grid): %v", err)
	}
	x, _, err := p.FromWGS84(19, 47)
	if err != nil {
		t.Fatalf("FromWGS84: %v", err)
	}
	if math.Abs(x-500_000) > 1e-3 {
		t.Errorf("x on central meridian = %.3f, want 500000", x)
	}

	// Built-ins remain available next to user definitions.
	if _, err := r.Lookup("EPSG:8682"); err != nil {
		t.Errorf("Lookup(EPSG:8682): %v", err)
	}
	// The default registry does not see user definitions.
	if _, err := ForCode("LOCAL:grid"); err == nil {
		t.Error("ForCode(LOCAL:grid) succeeded on the default registry")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		defs map[string]string
	}{
		{"empty definition", map[string]string{"EPSG:1": " "}},
		{"empty code", map[string]string{" ": "+proj=longlat"}},
		{"not proj4", map[string]string{"LOCAL:X": "not a proj string"}},
		{"no transformer", map[string]string{"LOCAL:X": "+proj=stere +lat_0=90 +lon_0=0 +ellps=WGS84 +units=m +no_defs"}},
	}
	for _, tt := range tests {
		if _, err := NewRegistry(tt.defs); err == nil {
			t.Errorf("%s: NewRegistry(%v) succeeded, want error", tt.name, tt.defs)
		}
	}

	_, err := NewRegistry(map[string]string{"LOCAL:X": "+proj=stere +lat_0=90 +lon_0=0 +ellps=WGS84 +units=m +no_defs"})
	var unsupported *UnsupportedCRSError
	if !errors.As(err, &unsupported) {
		t.Errorf("NewRegistry(stere) error = %v, want *UnsupportedCRSError", err)
	}
}

func TestLookup_BadProj4String(t *testing.T) {
	for _, code := range []string{
		"+proj=nosuchprojection +ellps=WGS84",
		"+proj=stere +lat_0=90 +lon_0=0 +ellps=WGS84 +units=m +no_defs",
	} {
		p, err := ForCode(code)
		var unsupported *UnsupportedCRSError
		if !errors.As(err, &unsupported) {
			t.Errorf("ForCode(%q) error = %v, want *UnsupportedCRSError", code, err)
		}
		if p != nil {
			t.Errorf("ForCode(%q) returned projection %v alongside error", code, p)
		}
	}
}

func TestLookup_RawLongLatIsIdentity(t *testing.T) {
	p, err := ForCode(wgs84Definition)
	if err != nil {
		t.Fatalf("ForCode(%q): %v", wgs84Definition, err)
	}
	x, y, err := p.FromWGS84(19.04, 47.5)
	if err != nil {
		t.Fatalf("FromWGS84: %v", err)
	}
	if math.Abs(x-19.04) > 1e-9 || math.Abs(y-47.5) > 1e-9 {
		t.Errorf("FromWGS84(19.04, 47.5) = (%v, %v), want unchanged", x, y)
	}
}

func TestUTMCode(t *testing.T) {
	tests := []struct {
		zone  int
		south bool
		want  string
	}{
		{1, false, "EPSG:32601"},
		{31, false, "EPSG:32631"},
		{60, false, "EPSG:32660"},
		{33, true, "EPSG:32733"},
	}
	for _, tt := range tests {
		got := UTMCode(tt.zone, tt.south)
		if got != tt.want {
			t.Errorf("UTMCode(%d, %v) = %q, want %q", tt.zone, tt.south, got, tt.want)
		}
		zone, south, _, ok := parseUTMCode(got)
		if !ok || zone != tt.zone || south != tt.south {
			t.Errorf("parseUTMCode(%q) = (%d, %v, %v), want (%d, %v, true)", got, zone, south, ok, tt.zone, tt.south)
		}
	}
}

func TestHelmertRoundTrip(t *testing.T) {
	h := &Helmert{DX: 52.17, DY: -71.82, DZ: -14.9, Target: GRS67}
	lon, lat := 19.040236, 47.497913

	localLon, localLat := h.FromWGS84(lon, lat)
	if localLon == lon && localLat == lat {
		t.Fatal("FromWGS84 did not move the point")
	}
	gotLon, gotLat := h.ToWGS84(localLon, localLat)
	if math.Abs(gotLon-lon) > 1e-7 || math.Abs(gotLat-lat) > 1e-7 {
		t.Errorf("round trip = (%.10f, %.10f), want (%.10f, %.10f)", gotLon, gotLat, lon, lat)
	}
}

func TestRegistryCodes(t *testing.T) {
	r, err := NewRegistry(map[string]string{"local:1": "+proj=utm +zone=34 +ellps=GRS80 +units=m +no_defs"})
	if err != nil {
		t.Fatal(err)
	}
	codes := r.Codes()
	if len(codes) != len(nativeCodes)+len(builtinDefinitions)+1 {
		t.Fatalf("got %d codes, want %d", len(codes), len(nativeCodes)+len(builtinDefinitions)+1)
	}
	for i, code := range nativeCodes {
		if codes[i] != code {
			t.Errorf("codes[%d] = %s, want %s", i, codes[i], code)
		}
	}
	defined := codes[len(nativeCodes):]
	for i := 1; i < len(defined); i++ {
		if defined[i-1] >= defined[i] {
			t.Errorf("codes not sorted: %s before %s", defined[i-1], defined[i])
		}
	}
	for _, code := range codes {
		if _, err := r.Lookup(code); err != nil {
			t.Errorf("Lookup(%s): %v", code, err)
		}
	}
}
