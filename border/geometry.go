package border

import (
	"image"
	"image/draw"

	"github.com/tsawler/taskcards/model"
)

// FitSize returns the largest size with the aspect ratio of src that fits
// in box. The width-constrained candidate is tried first; each side is at
// least one pixel.
func FitSize(src, box image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{X: max(box.X, 1), Y: max(box.Y, 1)}
	}
	w, h := box.X, box.X*src.Y/src.X
	if h > box.Y {
		w, h = box.Y*src.X/src.Y, box.Y
	}
	return image.Point{X: max(w, 1), Y: max(h, 1)}
}

// Quadrants splits r at its midpoints in model.Quadrants order.
func Quadrants(r image.Rectangle) [model.CardsPerPage]image.Rectangle {
	mx := r.Min.X + r.Dx()/2
	my := r.Min.Y + r.Dy()/2
	return [model.CardsPerPage]image.Rectangle{
		model.TopLeft:     image.Rect(r.Min.X, r.Min.Y, mx, my),
		model.TopRight:    image.Rect(mx, r.Min.Y, r.Max.X, my),
		model.BottomLeft:  image.Rect(r.Min.X, my, mx, r.Max.Y),
		model.BottomRight: image.Rect(mx, my, r.Max.X, r.Max.Y),
	}
}

// Split copies the four quadrants of img into their own bitmaps, each with
// its origin at (0, 0).
func Split(img image.Image) [model.CardsPerPage]*image.RGBA {
	var out [model.CardsPerPage]*image.RGBA
	for q, r := range Quadrants(img.Bounds()) {
		dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
		out[q] = dst
	}
	return out
}

// Recompose pastes cards back at the quadrant offsets of a size-sized page
// on a white canvas.
func Recompose(size image.Point, cards [model.CardsPerPage]image.Image) *image.RGBA {
	page := whiteCanvas(size)
	for q, r := range Quadrants(page.Bounds()) {
		if cards[q] == nil {
			continue
		}
		draw.Draw(page, r, cards[q], cards[q].Bounds().Min, draw.Src)
	}
	return page
}

func whiteCanvas(size image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}
