// Package config loads the taskcards YAML configuration.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/taskcards/taskerr"
)

// DefaultPath is the configuration file looked up by the CLI.
const DefaultPath = "taskcards.yaml"

// Config holds all taskcards configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Raster  RasterConfig  `yaml:"raster"`
	Border  BorderConfig  `yaml:"border"`
	Paper   PaperConfig   `yaml:"paper"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures the run directory.
type OutputConfig struct {
	Dir string `yaml:"dir"` // deleted and recreated by every run
}

// RenderConfig configures the typesetter.
type RenderConfig struct {
	Command string `yaml:"command"`
	Timeout string `yaml:"timeout"`
}

// RasterConfig configures the PDF to bitmap converter.
type RasterConfig struct {
	Command string `yaml:"command"`
	DPI     int    `yaml:"dpi"`
	Timeout string `yaml:"timeout"`
}

// MarginsConfig is the content inset of a card in pixels.
type MarginsConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// BorderConfig configures border compositing.
type BorderConfig struct {
	Template    string        `yaml:"template"`
	Margins     MarginsConfig `yaml:"margins"`
	Workers     int           `yaml:"workers"`      // 0 means GOMAXPROCS
	JPEGQuality int           `yaml:"jpeg_quality"` // 0 stores pages losslessly
}

// PaperConfig is the nominal page size in inches.
type PaperConfig struct {
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// UploadConfig configures the image host. All three fields are needed for
// uploads; an empty section disables them.
type UploadConfig struct {
	UploadURL string `yaml:"upload_url"`
	BaseURL   string `yaml:"base_url"`
	Secret    string `yaml:"secret"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Dir: "out"},
		Render: RenderConfig{
			Command: "pdflatex",
			Timeout: "2m",
		},
		Raster: RasterConfig{
			Command: "pdftoppm",
			DPI:     300,
			Timeout: "1m",
		},
		Border: BorderConfig{
			Template:    "img/border_1.jpg",
			Margins:     MarginsConfig{X: 200, Y: 200},
			JPEGQuality: 90,
		},
		Paper: PaperConfig{WidthIn: 11, HeightIn: 8.5},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, taskerr.Configurationf("config.load", "failed to parse %s: %v", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("TASKCARDS_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if secret := os.Getenv("TASKCARDS_UPLOAD_SECRET"); secret != "" {
		c.Upload.Secret = secret
	}
}

// RenderTimeout returns the typesetter timeout.
func (c *Config) RenderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Render.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// RasterTimeout returns the per page rasterizer timeout.
func (c *Config) RasterTimeout() time.Duration {
	d, err := time.ParseDuration(c.Raster.Timeout)
	if err != nil {
		return time.Minute
	}
	return d
}

// UploadEnabled reports whether any upload field is set.
func (c *Config) UploadEnabled() bool {
	return c.Upload.UploadURL != "" || c.Upload.BaseURL != "" || c.Upload.Secret != ""
}

// NominalPagePixels returns the expected raster size of a page.
func (c *Config) NominalPagePixels() (w, h int) {
	w = int(math.Round(c.Paper.WidthIn * float64(c.Raster.DPI)))
	h = int(math.Round(c.Paper.HeightIn * float64(c.Raster.DPI)))
	return w, h
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	const op = "config.validate"

	if c.Output.Dir == "" {
		return taskerr.Configurationf(op, "output.dir must not be empty")
	}
	if c.Render.Command == "" {
		return taskerr.Configurationf(op, "render.command must not be empty")
	}
	if c.Raster.Command == "" {
		return taskerr.Configurationf(op, "raster.command must not be empty")
	}
	for name, v := range map[string]string{"render.timeout": c.Render.Timeout, "raster.timeout": c.Raster.Timeout} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return taskerr.Configurationf(op, "%s: %v", name, err)
		}
		if d <= 0 {
			return taskerr.Configurationf(op, "%s must be positive, got %s", name, v)
		}
	}
	if c.Raster.DPI <= 0 {
		return taskerr.Configurationf(op, "raster.dpi must be positive, got %d", c.Raster.DPI)
	}
	if c.Border.Template == "" {
		return taskerr.Configurationf(op, "border.template must not be empty")
	}
	if c.Border.Margins.X < 0 || c.Border.Margins.Y < 0 {
		return taskerr.Configurationf(op, "border.margins must not be negative, got %d,%d", c.Border.Margins.X, c.Border.Margins.Y)
	}
	if c.Border.Workers < 0 {
		return taskerr.Configurationf(op, "border.workers must not be negative, got %d", c.Border.Workers)
	}
	if c.Border.JPEGQuality < 0 || c.Border.JPEGQuality > 100 {
		return taskerr.Configurationf(op, "border.jpeg_quality must be within 0..100, got %d", c.Border.JPEGQuality)
	}
	if c.Paper.WidthIn <= 0 || c.Paper.HeightIn <= 0 {
		return taskerr.Configurationf(op, "paper size must be positive, got %gx%g", c.Paper.WidthIn, c.Paper.HeightIn)
	}

	// every card must keep some content after the margins are taken off
	w, h := c.NominalPagePixels()
	qw, qh := w/2, h/2
	if qw <= 2*c.Border.Margins.X || qh <= 2*c.Border.Margins.Y {
		return taskerr.Configurationf(op, "border.margins %d,%d leave no content in a %dx%d card at %d dpi",
			c.Border.Margins.X, c.Border.Margins.Y, qw, qh, c.Raster.DPI)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return taskerr.Configurationf(op, "invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return taskerr.Configurationf(op, "invalid logging.format %q", c.Logging.Format)
	}
	return nil
}
