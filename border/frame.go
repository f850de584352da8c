package border

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/taskerr"
)

// Margins is the inset, in pixels, between a card's edge and its content.
type Margins struct {
	X, Y int
}

// Check fails when a card of size would have no room for content.
func (m Margins) Check(size image.Point) error {
	if m.X < 0 || m.Y < 0 {
		return taskerr.Configurationf("border.margins", "negative margins %dx%d", m.X, m.Y)
	}
	if size.X <= 2*m.X || size.Y <= 2*m.Y {
		return taskerr.Configurationf("border.margins",
			"card of %dx%d px leaves no room for content inside margins %dx%d", size.X, size.Y, m.X, m.Y)
	}
	return nil
}

// Frame builds one bordered card from a quadrant bitmap. The template's
// corner tiles, fitted to half the card, sit at the card's corners; the
// content, shrunk by the margins on every side, is pasted over them.
func (t *Template) Frame(content image.Image, m Margins) (*image.RGBA, error) {
	size := content.Bounds().Size()
	if err := m.Check(size); err != nil {
		return nil, err
	}

	card := whiteCanvas(size)
	fit := FitSize(t.tile, image.Point{X: size.X / 2, Y: size.Y / 2})
	corners := [model.CardsPerPage]image.Point{
		model.TopLeft:     {},
		model.TopRight:    {X: size.X - fit.X},
		model.BottomLeft:  {Y: size.Y - fit.Y},
		model.BottomRight: {X: size.X - fit.X, Y: size.Y - fit.Y},
	}
	for q, at := range corners {
		dst := image.Rectangle{Min: at, Max: at.Add(fit)}
		xdraw.CatmullRom.Scale(card, dst, t.tiles[q], t.tiles[q].Bounds(), draw.Src, nil)
	}

	inner := image.Rect(m.X, m.Y, size.X-m.X, size.Y-m.Y)
	xdraw.CatmullRom.Scale(card, inner, content, content.Bounds(), draw.Src, nil)
	return card, nil
}

// ApplyPage frames all four quadrants of a page and recomposes them. The
// result has the page's exact size.
func (t *Template) ApplyPage(page image.Image, m Margins) (*image.RGBA, [model.CardsPerPage]*image.RGBA, error) {
	var cards [model.CardsPerPage]*image.RGBA
	var framed [model.CardsPerPage]image.Image
	for q, quadrant := range Split(page) {
		card, err := t.Frame(quadrant, m)
		if err != nil {
			return nil, cards, err
		}
		cards[q] = card
		framed[q] = card
	}
	return Recompose(page.Bounds().Size(), framed), cards, nil
}
