package border

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/taskerr"
)

var cornerColors = [model.CardsPerPage]color.RGBA{
	model.TopLeft:     {255, 0, 0, 255},
	model.TopRight:    {0, 255, 0, 255},
	model.BottomLeft:  {0, 0, 255, 255},
	model.BottomRight: {255, 255, 0, 255},
}

// cornered paints each quadrant of a w x h bitmap in its corner color.
func cornered(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for q, r := range Quadrants(img.Bounds()) {
		draw.Draw(img, r, image.NewUniform(cornerColors[q]), image.Point{}, draw.Src)
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "border.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestNewTemplateTiles(t *testing.T) {
	tmpl, err := NewTemplate(cornered(8, 6))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), tmpl.TileSize())

	for _, q := range model.Quadrants {
		tile := tmpl.Tile(q)
		assert.Equal(t, image.Rect(0, 0, 4, 3), tile.Bounds(), q.String())
		assert.Equal(t, cornerColors[q], tile.At(1, 1), q.String())
	}
}

func TestNewTemplateOddSizeDropsRemainder(t *testing.T) {
	tmpl, err := NewTemplate(cornered(9, 7))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), tmpl.TileSize())
}

func TestNewTemplateTooSmall(t *testing.T) {
	_, err := NewTemplate(image.NewRGBA(image.Rect(0, 0, 1, 8)))
	assert.ErrorIs(t, err, taskerr.ErrAsset)
}

func TestLoadTemplate(t *testing.T) {
	tmpl, err := LoadTemplate(writePNG(t, cornered(10, 10)))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 5), tmpl.TileSize())
}

func TestLoadTemplateErrors(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "border.png")
	require.NoError(t, os.WriteFile(text, []byte("not an image at all"), 0o644))
	truncated := filepath.Join(dir, "truncated.png")
	require.NoError(t, os.WriteFile(truncated, []byte("\x89PNG\r\n\x1a\n\x00\x00"), 0o644))

	for name, path := range map[string]string{
		"missing":   filepath.Join(dir, "nope.png"),
		"not image": text,
		"truncated": truncated,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTemplate(path)
			assert.ErrorIs(t, err, taskerr.ErrAsset)
		})
	}
}
