package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/pspoerri/optimalcrs/internal/coord"
)

// Config holds all application configuration.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Boundaries  BoundariesConfig  `mapstructure:"boundaries"`
	Mappings    MappingsConfig    `mapstructure:"mappings"`
	Projections ProjectionsConfig `mapstructure:"projections"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BoundariesConfig selects the boundary dataset. An empty path uses the
// embedded dataset.
type BoundariesConfig struct {
	Path string `mapstructure:"path"`
}

// MappingEntry maps one region name to a CRS code. Mappings are lists rather
// than YAML maps because viper lower-cases map keys, and region names are
// matched exactly.
type MappingEntry struct {
	Region string `mapstructure:"region"`
	CRS    string `mapstructure:"crs"`
}

type MappingsConfig struct {
	Country          []MappingEntry `mapstructure:"country"`
	Continent        []MappingEntry `mapstructure:"continent"`
	DisableCountry   bool           `mapstructure:"disable_country"`
	DisableContinent bool           `mapstructure:"disable_continent"`
}

// CountryMapping returns the country mapping, or nil when the tier is disabled.
func (m MappingsConfig) CountryMapping() map[string]string {
	if m.DisableCountry {
		return nil
	}
	return toMap(m.Country)
}

// ContinentMapping returns the continent mapping, or nil when the tier is disabled.
func (m MappingsConfig) ContinentMapping() map[string]string {
	if m.DisableContinent {
		return nil
	}
	return toMap(m.Continent)
}

func toMap(entries []MappingEntry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Region] = e.CRS
	}
	return out
}

// ProjectionDefinition registers a proj4 string under a CRS code.
type ProjectionDefinition struct {
	Code       string `mapstructure:"code"`
	Definition string `mapstructure:"definition"`
}

type ProjectionsConfig struct {
	Definitions []ProjectionDefinition `mapstructure:"definitions"`
}

// DefinitionMap returns the definitions keyed by code.
func (p ProjectionsConfig) DefinitionMap() map[string]string {
	out := make(map[string]string, len(p.Definitions))
	for _, d := range p.Definitions {
		out[d.Code] = d.Definition
	}
	return out
}

// Default mappings cover the regions of the embedded boundary dataset.
var (
	DefaultCountryMappings = []MappingEntry{
		{Region: "Hungary", CRS: "EPSG:23700"},
		{Region: "Serbia", CRS: "EPSG:8682"},
		{Region: "Switzerland", CRS: "EPSG:2056"},
	}
	DefaultContinentMappings = []MappingEntry{
		{Region: "Europe", CRS: "EPSG:3035"},
		{Region: "North America", CRS: "ESRI:102009"},
	}
)

// Load reads configuration from file and environment variables. With an
// empty path, optimalcrs.yaml is looked up in . and ./configs and may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("boundaries.path", "")
	v.SetDefault("mappings.country", entriesDefault(DefaultCountryMappings))
	v.SetDefault("mappings.continent", entriesDefault(DefaultContinentMappings))
	v.SetDefault("mappings.disable_country", false)
	v.SetDefault("mappings.disable_continent", false)
	v.SetDefault("projections.definitions", []map[string]any{})

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else {
		v.SetConfigName("optimalcrs")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config")
			}
		}
	}

	// Environment variables: OPTIMALCRS_LOG_LEVEL → log.level
	v.SetEnvPrefix("OPTIMALCRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func entriesDefault(entries []MappingEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{"region": e.Region, "crs": e.CRS}
	}
	return out
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	errs = append(errs, validateEntries("mappings.country", c.Mappings.Country)...)
	errs = append(errs, validateEntries("mappings.continent", c.Mappings.Continent)...)

	seen := make(map[string]bool)
	for i, d := range c.Projections.Definitions {
		code := strings.ToUpper(strings.TrimSpace(d.Code))
		if code == "" {
			errs = append(errs, fmt.Sprintf("projections.definitions[%d].code is required", i))
		} else if seen[code] {
			errs = append(errs, fmt.Sprintf("projections.definitions[%d]: duplicate code %s", i, d.Code))
		}
		seen[code] = true
		if strings.TrimSpace(d.Definition) == "" {
			errs = append(errs, fmt.Sprintf("projections.definitions[%d].definition is required", i))
		}
	}

	if len(errs) == 0 {
		if _, err := coord.NewRegistry(c.Projections.DefinitionMap()); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.Newf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateEntries(key string, entries []MappingEntry) []string {
	var errs []string
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Region == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].region is required", key, i))
		} else if seen[e.Region] {
			errs = append(errs, fmt.Sprintf("%s[%d]: duplicate region %q", key, i, e.Region))
		}
		seen[e.Region] = true
		if strings.TrimSpace(e.CRS) == "" {
			errs = append(errs, fmt.Sprintf("%s[%d].crs is required", key, i))
		}
	}
	return errs
}
