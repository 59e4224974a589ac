package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/pspoerri/optimalcrs/internal/config"
	"github.com/pspoerri/optimalcrs/internal/coord"
	"github.com/pspoerri/optimalcrs/internal/crs"
	"github.com/pspoerri/optimalcrs/internal/logging"
	"github.com/pspoerri/optimalcrs/internal/metrics"
	"github.com/pspoerri/optimalcrs/internal/region"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// mappingFlag collects repeated Name=CODE flags.
type mappingFlag struct {
	entries crs.Mapping
}

func (m *mappingFlag) String() string {
	if m == nil || len(m.entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.entries))
	for _, name := range m.entries.Names() {
		parts = append(parts, name+"="+m.entries[name])
	}
	return strings.Join(parts, ",")
}

func (m *mappingFlag) Set(value string) error {
	name, code, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if !ok || name == "" || code == "" {
		return errors.Newf("expected Name=CODE, got %q", value)
	}
	if m.entries == nil {
		m.entries = crs.Mapping{}
	}
	m.entries[name] = code
	return nil
}

func main() {
	var (
		configPath   string
		boundaries   string
		logLevel     string
		logFormat    string
		noCountry    bool
		noContinent  bool
		verbose      bool
		showVersion  bool
		listCodes    bool
		dumpMetrics  bool
		countryMap   mappingFlag
		continentMap mappingFlag
	)

	flag.StringVar(&configPath, "config", "", "Config file (default: optimalcrs.yaml in . or ./configs, if present)")
	flag.StringVar(&boundaries, "boundaries", "", "GeoJSON boundary file (default: embedded dataset)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")
	flag.StringVar(&logFormat, "log-format", "", "Log format: text, json (default: from config)")
	flag.Var(&countryMap, "country", "Country mapping Name=CODE, repeatable; replaces the configured country mapping")
	flag.Var(&continentMap, "continent", "Continent mapping Name=CODE, repeatable; replaces the configured continent mapping")
	flag.BoolVar(&noCountry, "no-country", false, "Skip the country tier")
	flag.BoolVar(&noContinent, "no-continent", false, "Skip the continent tier")
	flag.BoolVar(&verbose, "verbose", false, "Log selection decisions (same as -log-level debug)")
	flag.BoolVar(&dumpMetrics, "metrics", false, "Write selector metrics in Prometheus text format to stderr on exit")
	flag.BoolVar(&listCodes, "list-codes", false, "Print the built-in and configured CRS codes and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: optimalcrs [flags] <lat,lon> [<lat,lon> ...]\n\n")
		fmt.Fprintf(os.Stderr, "Pick a coordinate reference system for a set of WGS84 points and print\n")
		fmt.Fprintf(os.Stderr, "the points reprojected into it. A country CRS wins when all mapped\n")
		fmt.Fprintf(os.Stderr, "matches agree on one country, then a continent CRS (or UTM when every\n")
		fmt.Fprintf(os.Stderr, "point shares a zone), otherwise WGS84.\n\n")
		fmt.Fprintf(os.Stderr, "Points may be mixed with flags; negative latitudes such as -33.9,18.4\n")
		fmt.Fprintf(os.Stderr, "are read as points, not flags. Arguments after -- are always points.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flagArgs, pointArgs := splitArgs(os.Args[1:])
	flag.CommandLine.Parse(flagArgs)

	if showVersion {
		fmt.Printf("optimalcrs %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatalf("Config: %v", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	registry, err := coord.NewRegistry(cfg.Projections.DefinitionMap())
	if err != nil {
		fatalf("Projections: %v", err)
	}

	if listCodes {
		for _, code := range registry.Codes() {
			fmt.Println(code)
		}
		os.Exit(0)
	}

	args := append(pointArgs, flag.Args()...)
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	points := make([]crs.Point, 0, len(args))
	for _, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			fatalf("Point: %v", err)
		}
		points = append(points, p)
	}

	if boundaries == "" {
		boundaries = cfg.Boundaries.Path
	}
	set, err := loadBoundaries(boundaries)
	if err != nil {
		fatalf("Boundaries: %v", err)
	}
	logger.Debug("boundaries loaded",
		"source", sourceName(boundaries),
		"countries", set.Countries.Len(),
		"continents", set.Continents.Len())

	country := crs.Mapping(cfg.Mappings.CountryMapping())
	if countryMap.entries != nil {
		country = countryMap.entries
	}
	continent := crs.Mapping(cfg.Mappings.ContinentMapping())
	if continentMap.entries != nil {
		continent = continentMap.entries
	}
	if noCountry {
		country = nil
	}
	if noContinent {
		continent = nil
	}

	reg := prometheus.NewRegistry()
	selector := crs.FromRegions(set,
		crs.WithLogger(logger),
		crs.WithProjections(registry),
		crs.WithMetrics(metrics.New(reg)))
	result, err := selector.Convert(points, country, continent)
	if dumpMetrics {
		if err := writeMetrics(os.Stderr, reg); err != nil {
			logger.Warn("writing metrics failed", "error", err)
		}
	}
	if err != nil {
		fatalf("Convert: %v", err)
	}

	if err := writeResult(os.Stdout, result); err != nil {
		fatalf("Output: %v", err)
	}
}

// splitArgs separates "lat,lon" arguments from flags so that a negative
// latitude is not taken for a flag. Everything after "--" is a point.
func splitArgs(args []string) (flags, points []string) {
	for i, arg := range args {
		if arg == "--" {
			return flags, append(points, args[i+1:]...)
		}
		if _, err := parsePoint(arg); err == nil {
			points = append(points, arg)
			continue
		}
		flags = append(flags, arg)
	}
	return flags, points
}

// parsePoint parses "lat,lon" in decimal degrees.
func parsePoint(s string) (crs.Point, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return crs.Point{}, errors.Newf("expected lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return crs.Point{}, errors.Wrapf(err, "latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return crs.Point{}, errors.Wrapf(err, "longitude in %q", s)
	}
	return crs.LatLon(lat, lon), nil
}

func loadBoundaries(path string) (*region.Set, error) {
	if path == "" {
		return region.Default(), nil
	}
	return region.LoadFile(path)
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// writeResult prints the CRS identifier, the resolved code, then one
// "x y" line per point.
func writeResult(w io.Writer, r crs.Result) error {
	if _, err := fmt.Fprintln(w, r.Identifier()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, r.Resolved); err != nil {
		return err
	}
	for _, p := range r.Points {
		x := strconv.FormatFloat(p.X, 'f', -1, 64)
		y := strconv.FormatFloat(p.Y, 'f', -1, 64)
		if _, err := fmt.Fprintln(w, x, y); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
