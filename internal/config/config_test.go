package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/taskcards/taskerr"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 300, cfg.Raster.DPI)
	assert.Equal(t, 2*time.Minute, cfg.RenderTimeout())
	assert.Equal(t, time.Minute, cfg.RasterTimeout())
	assert.False(t, cfg.UploadEnabled())

	w, h := cfg.NominalPagePixels()
	assert.Equal(t, 3300, w)
	assert.Equal(t, 2550, h)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TASKCARDS_OUTPUT_DIR", "")
	t.Setenv("TASKCARDS_UPLOAD_SECRET", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("TASKCARDS_OUTPUT_DIR", "")
	t.Setenv("TASKCARDS_UPLOAD_SECRET", "")

	path := filepath.Join(t.TempDir(), "taskcards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
raster:
  dpi: 150
border:
  margins:
    x: 50
upload:
  upload_url: https://host.test/upload
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Raster.DPI)
	assert.Equal(t, "pdftoppm", cfg.Raster.Command)
	assert.Equal(t, 50, cfg.Border.Margins.X)
	assert.Equal(t, 200, cfg.Border.Margins.Y)
	assert.True(t, cfg.UploadEnabled())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("raster: [1, 2"), 0o600))
	_, err := Load(path)
	assert.ErrorIs(t, err, taskerr.ErrConfiguration)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKCARDS_OUTPUT_DIR", "/tmp/cards")
	t.Setenv("TASKCARDS_UPLOAD_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cards", cfg.Output.Dir)
	assert.Equal(t, "s3cret", cfg.Upload.Secret)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("TASKCARDS_OUTPUT_DIR", "")
	t.Setenv("TASKCARDS_UPLOAD_SECRET", "")

	cfg := DefaultConfig()
	cfg.Border.Workers = 3
	path := filepath.Join(t.TempDir(), "sub", "taskcards.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"zero dpi", func(c *Config) { c.Raster.DPI = 0 }},
		{"bad timeout", func(c *Config) { c.Render.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Raster.Timeout = "-1s" }},
		{"negative margin", func(c *Config) { c.Border.Margins.X = -1 }},
		{"negative workers", func(c *Config) { c.Border.Workers = -2 }},
		{"jpeg quality", func(c *Config) { c.Border.JPEGQuality = 101 }},
		{"no template", func(c *Config) { c.Border.Template = "" }},
		{"no paper", func(c *Config) { c.Paper.HeightIn = 0 }},
		// card is 1650 wide at 300 dpi
		{"margin fills card width", func(c *Config) { c.Border.Margins.X = 825 }},
		// card is 1275 high at 300 dpi
		{"margin fills card height", func(c *Config) { c.Border.Margins.Y = 700 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, taskerr.ErrConfiguration)
		})
	}

	cfg := DefaultConfig()
	cfg.Border.Margins = MarginsConfig{X: 824, Y: 637}
	assert.NoError(t, cfg.Validate())
}
