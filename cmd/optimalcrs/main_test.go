package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pspoerri/optimalcrs/internal/crs"
	"github.com/pspoerri/optimalcrs/internal/metrics"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    crs.Point
		wantErr bool
	}{
		{"48.8566,2.3522", crs.Point{X: 2.3522, Y: 48.8566}, false},
		{" -33.9 , 18.4 ", crs.Point{X: 18.4, Y: -33.9}, false},
		{"48.8566", crs.Point{}, true},
		{"north,2.35", crs.Point{}, true},
		{"48.85,east", crs.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePoint(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMappingFlag(t *testing.T) {
	var m mappingFlag
	if m.String() != "" {
		t.Errorf("empty flag String() = %q", m.String())
	}
	for _, v := range []string{"Hungary=EPSG:23700", "North America = ESRI:102009"} {
		if err := m.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if got := m.entries["North America"]; got != "ESRI:102009" {
		t.Errorf("North America = %q, want ESRI:102009", got)
	}
	if got, want := m.String(), "Hungary=EPSG:23700,North America=ESRI:102009"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	for _, v := range []string{"Hungary", "=EPSG:3035", "Europe="} {
		if err := m.Set(v); err == nil {
			t.Errorf("Set(%q) expected error", v)
		}
	}
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	r := crs.Result{
		CRS:      crs.Choice{Kind: crs.KindUTM},
		Resolved: "EPSG:32631",
		Points:   []crs.Point{{X: 452424.5, Y: 5411817.25}},
	}
	if err := writeResult(&buf, r); err != nil {
		t.Fatal(err)
	}
	want := "utm\nEPSG:32631\n452424.5 5411817.25\n"
	if buf.String() != want {
		t.Errorf("writeResult = %q, want %q", buf.String(), want)
	}
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).Selected("utm")

	var buf bytes.Buffer
	if err := writeMetrics(&buf, reg); err != nil {
		t.Fatal(err)
	}
	if want := `optimalcrs_selector_selections_total{tier="utm"} 1`; !strings.Contains(buf.String(), want) {
		t.Errorf("metrics output missing %q:\n%s", want, buf.String())
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		args       []string
		wantFlags  []string
		wantPoints []string
	}{
		{
			args:       []string{"-33.9,18.4", "-verbose", "-26.2,28.0"},
			wantFlags:  []string{"-verbose"},
			wantPoints: []string{"-33.9,18.4", "-26.2,28.0"},
		},
		{
			args:       []string{"-country", "Hungary=EPSG:23700", "47.5,19.04"},
			wantFlags:  []string{"-country", "Hungary=EPSG:23700"},
			wantPoints: []string{"47.5,19.04"},
		},
		{
			args:       []string{"-no-country", "--", "-33.9,18.4", "-verbose"},
			wantFlags:  []string{"-no-country"},
			wantPoints: []string{"-33.9,18.4", "-verbose"},
		},
	}
	for _, tt := range tests {
		flags, points := splitArgs(tt.args)
		if strings.Join(flags, " ") != strings.Join(tt.wantFlags, " ") {
			t.Errorf("splitArgs(%q) flags = %q, want %q", tt.args, flags, tt.wantFlags)
		}
		if strings.Join(points, " ") != strings.Join(tt.wantPoints, " ") {
			t.Errorf("splitArgs(%q) points = %q, want %q", tt.args, points, tt.wantPoints)
		}
	}
}
