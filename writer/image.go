package writer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/internal/filters"
)

// WriteImagePage writes img as a single-page document. The page measures
// the image's pixel size at dpi. A quality between 1 and 100 embeds the
// image as JPEG; 0 embeds lossless Flate-compressed RGB.
func WriteImagePage(w io.Writer, img image.Image, dpi, quality int) error {
	if dpi <= 0 {
		return fmt.Errorf("invalid resolution %d dpi", dpi)
	}
	if quality < 0 || quality > 100 {
		return fmt.Errorf("invalid JPEG quality %d", quality)
	}
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("empty image")
	}

	xobj, err := imageXObject(img, quality)
	if err != nil {
		return err
	}

	width := core.Real(float64(b.Dx()) * 72 / float64(dpi))
	height := core.Real(float64(b.Dy()) * 72 / float64(dpi))
	content := fmt.Sprintf("q %s 0 0 %s 0 0 cm /Im0 Do Q", width, height)

	d := New()
	catalog := d.Reserve()
	root := d.Reserve()
	im := d.Add(xobj)
	contents := d.Add(&core.Stream{Dict: core.Dict{}, Data: []byte(content)})
	page := d.Add(core.Dict{
		"Type":      core.Name("Page"),
		"Parent":    root,
		"MediaBox":  core.Array{core.Int(0), core.Int(0), width, height},
		"Resources": core.Dict{"XObject": core.Dict{"Im0": im}},
		"Contents":  contents,
	})
	d.Set(root, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{page}, "Count": core.Int(1)})
	d.Set(catalog, core.Dict{"Type": core.Name("Catalog"), "Pages": root})
	return d.Write(w, catalog, core.IndirectRef{})
}

func imageXObject(img image.Image, quality int) (*core.Stream, error) {
	b := img.Bounds()
	dict := core.Dict{
		"Type":             core.Name("XObject"),
		"Subtype":          core.Name("Image"),
		"Width":            core.Int(b.Dx()),
		"Height":           core.Int(b.Dy()),
		"ColorSpace":       core.Name("DeviceRGB"),
		"BitsPerComponent": core.Int(8),
	}

	if quality > 0 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		dict["Filter"] = core.Name("DCTDecode")
		return &core.Stream{Dict: dict, Data: buf.Bytes()}, nil
	}

	raw := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			raw = append(raw, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	data, err := filters.FlateEncode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compress image: %w", err)
	}
	dict["Filter"] = core.Name("FlateDecode")
	return &core.Stream{Dict: dict, Data: data}, nil
}
