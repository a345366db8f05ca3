// Package config loads and saves the circuitnet settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/circuitnet/internal/logging"
	"github.com/OpenTraceLab/circuitnet/pkg/export"
	"github.com/OpenTraceLab/circuitnet/pkg/netlist"
	"github.com/OpenTraceLab/circuitnet/pkg/overlay"
)

// FileName is the settings file name inside the config directory.
const FileName = "config.yaml"

// Config stores persistent settings.
type Config struct {
	Trace     TraceSettings     `yaml:"trace"`
	Highlight HighlightSettings `yaml:"highlight"`
	Search    SearchSettings    `yaml:"search"`
	Export    ExportSettings    `yaml:"export"`
	Viewer    ViewerSettings    `yaml:"viewer"`
	Log       LogSettings       `yaml:"log"`
}

type TraceSettings struct {
	Threshold             float64  `yaml:"threshold"`
	ResolveCurveEndpoints bool     `yaml:"resolve_curve_endpoints"`
	ScaleWithViewBox      bool     `yaml:"scale_with_viewbox"`
	ExcludeIDs            []string `yaml:"exclude_ids,omitempty"`
	ExcludePattern        string   `yaml:"exclude_pattern,omitempty"`
}

type HighlightSettings struct {
	Stroke string  `yaml:"stroke"`
	Width  float64 `yaml:"width"`
}

type SearchSettings struct {
	MatchStroke string  `yaml:"match_stroke"`
	DimOpacity  float64 `yaml:"dim_opacity"`
}

type ExportSettings struct {
	Scales []int `yaml:"scales"`
}

type ViewerSettings struct {
	Theme string `yaml:"theme"` // light or dark
}

type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	p := overlay.DefaultPalette()
	width, _ := strconv.ParseFloat(p.HighlightWidth, 64)
	dim, _ := strconv.ParseFloat(p.DimOpacity, 64)
	return &Config{
		Trace: TraceSettings{
			Threshold: netlist.DefaultThreshold,
		},
		Highlight: HighlightSettings{Stroke: p.Highlight, Width: width},
		Search:    SearchSettings{MatchStroke: p.Match, DimOpacity: dim},
		Export:    ExportSettings{Scales: []int{1, 2, 4}},
		Viewer:    ViewerSettings{Theme: "light"},
		Log:       LogSettings{Level: "info", Format: "json"},
	}
}

// Dir returns the platform config directory.
func Dir() (string, error) {
	// Windows: %APPDATA%\circuitnet
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "circuitnet"), nil
	}

	// Linux/macOS: ~/.config/circuitnet
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "circuitnet"), nil
}

// Path returns the default settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the settings file at path, or at Path() when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	return LoadFile(path)
}

// LoadFile reads settings from path. Keys absent from the file keep their
// default values. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks value ranges and color names.
func (c *Config) Validate() error {
	if c.Trace.Threshold < 0 {
		return fmt.Errorf("trace.threshold must not be negative, got %v", c.Trace.Threshold)
	}
	if err := c.NetlistConfig().Validate(); err != nil {
		return err
	}
	if err := ValidateColor(c.Highlight.Stroke); err != nil {
		return fmt.Errorf("highlight.stroke: %w", err)
	}
	if c.Highlight.Width <= 0 {
		return fmt.Errorf("highlight.width must be positive, got %v", c.Highlight.Width)
	}
	if err := ValidateColor(c.Search.MatchStroke); err != nil {
		return fmt.Errorf("search.match_stroke: %w", err)
	}
	if c.Search.DimOpacity < 0 || c.Search.DimOpacity > 1 {
		return fmt.Errorf("search.dim_opacity must be within 0..1, got %v", c.Search.DimOpacity)
	}
	for _, s := range c.Export.Scales {
		if err := export.ValidateScale(s); err != nil {
			return fmt.Errorf("export.scales: %w", err)
		}
	}
	switch c.Viewer.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("viewer.theme must be light or dark, got %q", c.Viewer.Theme)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// ValidateColor accepts SVG color keywords, "none", and #rgb / #rrggbb hex.
func ValidateColor(s string) error {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return fmt.Errorf("empty color")
	}
	if v == "none" {
		return nil
	}
	if _, ok := colornames.Map[v]; ok {
		return nil
	}
	if strings.HasPrefix(v, "#") && (len(v) == 4 || len(v) == 7) {
		if _, err := strconv.ParseUint(v[1:], 16, 32); err == nil {
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", s)
}

// NetlistConfig converts the trace settings. The result is not validated.
func (c *Config) NetlistConfig() *netlist.Config {
	return &netlist.Config{
		Threshold:             c.Trace.Threshold,
		ResolveCurveEndpoints: c.Trace.ResolveCurveEndpoints,
		ScaleWithViewBox:      c.Trace.ScaleWithViewBox,
		ExcludeIDs:            append([]string(nil), c.Trace.ExcludeIDs...),
		ExcludePattern:        c.Trace.ExcludePattern,
	}
}

// Palette converts the highlight and search settings.
func (c *Config) Palette() overlay.Palette {
	return overlay.Palette{
		Highlight:      c.Highlight.Stroke,
		HighlightWidth: strconv.FormatFloat(c.Highlight.Width, 'g', -1, 64),
		Match:          c.Search.MatchStroke,
		DimOpacity:     strconv.FormatFloat(c.Search.DimOpacity, 'g', -1, 64),
	}
}

// LogOptions converts the log settings.
func (c *Config) LogOptions(verbose bool) logging.Options {
	return logging.Options{Level: c.Log.Level, Format: c.Log.Format, Verbose: verbose}
}
