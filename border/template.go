package border

import (
	"errors"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"

	"github.com/tsawler/taskcards/format"
	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/taskerr"
)

// Template is a decorative border bitmap cut into four equal corner tiles.
// It is read-only once loaded and safe to share between goroutines.
type Template struct {
	tiles [model.CardsPerPage]*image.RGBA
	tile  image.Point
}

// NewTemplate cuts img into corner tiles of floor(W/2) x floor(H/2).
func NewTemplate(img image.Image) (*Template, error) {
	b := img.Bounds()
	tile := image.Point{X: b.Dx() / 2, Y: b.Dy() / 2}
	if tile.X < 1 || tile.Y < 1 {
		return nil, taskerr.Assetf("border.template", "template of %dx%d px is too small to split", b.Dx(), b.Dy())
	}

	t := &Template{tile: tile}
	for q := range t.tiles {
		origin := b.Min
		if q == int(model.TopRight) || q == int(model.BottomRight) {
			origin.X += tile.X
		}
		if q == int(model.BottomLeft) || q == int(model.BottomRight) {
			origin.Y += tile.Y
		}
		dst := image.NewRGBA(image.Rectangle{Max: tile})
		draw.Draw(dst, dst.Bounds(), img, origin, draw.Src)
		t.tiles[q] = dst
	}
	return t, nil
}

// LoadTemplate reads a PNG, JPEG or GIF template. Any failure is an asset
// error.
func LoadTemplate(path string) (*Template, error) {
	const op = "border.template"

	kind, err := format.DetectFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, taskerr.Assetf(op, "border template %s not found", path)
	}
	if err != nil {
		return nil, taskerr.Assetf(op, "reading border template %s: %v", path, err)
	}
	if !kind.IsImage() {
		return nil, taskerr.Assetf(op, "border template %s is %s, not an image", path, kind)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, taskerr.Assetf(op, "opening border template: %v", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, taskerr.Assetf(op, "decoding border template %s: %v", path, err)
	}
	return NewTemplate(img)
}

// Tile returns the corner tile for q.
func (t *Template) Tile(q model.Quadrant) image.Image {
	return t.tiles[q]
}

// TileSize returns the size shared by all four tiles.
func (t *Template) TileSize() image.Point {
	return t.tile
}
