package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/tsawler/taskcards/contentstream"
	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/pages"
)

// PageImage is an image XObject drawn on a page
type PageImage struct {
	Name             string // XObject name (e.g., "Im0")
	Width            int
	Height           int
	ColorSpace       string // DeviceGray, DeviceRGB, ...
	BitsPerComponent int
	Filter           string // last filter of the chain, "" when raw
	Data             []byte // decoded pixels, or JPEG bytes for DCTDecode
}

// PageContent returns the decoded content of a page. A page whose
// /Contents is an array has its streams joined with newlines.
func (r *Reader) PageContent(page *pages.Page) ([]byte, error) {
	obj, err := r.Resolve(page.Dict().Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page contents: %w", err)
	}

	var parts []core.Object
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case core.Array:
		parts = v
	default:
		parts = []core.Object{v}
	}

	var buf bytes.Buffer
	for i, part := range parts {
		resolved, err := r.Resolve(part)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve content stream %d: %w", i, err)
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("content part %d is %T, not a stream", i, resolved)
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content stream %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// PageImages returns the image XObjects a page paints, in the order its
// content first paints them. Form XObjects and undecodable images are
// skipped.
func (r *Reader) PageImages(page *pages.Page) ([]PageImage, error) {
	content, err := r.PageContent(page)
	if err != nil {
		return nil, err
	}
	ops, err := contentstream.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}
	names := contentstream.XObjects(ops)
	if len(names) == 0 {
		return nil, nil
	}

	resources, err := page.Resources()
	if err != nil {
		return nil, nil
	}
	obj, err := r.Resolve(resources.Get("XObject"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve XObject dictionary: %w", err)
	}
	xobjects, ok := obj.(core.Dict)
	if !ok {
		return nil, nil
	}

	var images []PageImage
	for _, name := range names {
		resolved, err := r.Resolve(xobjects.Get(name))
		if err != nil {
			continue
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if st, _ := stream.Dict.GetName("Subtype"); st != "Image" {
			continue
		}
		img, err := r.extractImage(name, stream)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

func (r *Reader) extractImage(name string, stream *core.Stream) (PageImage, error) {
	dict := stream.Dict
	width, ok1 := dict.GetInt("Width")
	height, ok2 := dict.GetInt("Height")
	if !ok1 || !ok2 {
		return PageImage{}, fmt.Errorf("image missing Width or Height")
	}

	bpc := 8
	if v, ok := dict.GetInt("BitsPerComponent"); ok {
		bpc = int(v)
	}

	colorSpace := "DeviceGray"
	if cs, err := r.Resolve(dict.Get("ColorSpace")); err == nil {
		switch v := cs.(type) {
		case core.Name:
			colorSpace = string(v)
		case core.Array:
			if n, ok := v.Get(0).(core.Name); ok {
				colorSpace = string(n)
			}
		}
	}

	var filter string
	if fs := stream.Filters(); len(fs) > 0 {
		filter = fs[len(fs)-1]
	}

	data, err := stream.Decode()
	if err != nil {
		return PageImage{}, fmt.Errorf("failed to decode image stream: %w", err)
	}

	return PageImage{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       colorSpace,
		BitsPerComponent: bpc,
		Filter:           filter,
		Data:             data,
	}, nil
}

// Decode converts the image data to an image.Image. JPEG data and 8-bit
// DeviceRGB or DeviceGray samples are supported.
func (img PageImage) Decode() (image.Image, error) {
	if img.Filter == "DCTDecode" || img.Filter == "DCT" {
		return jpeg.Decode(bytes.NewReader(img.Data))
	}
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}

	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.ColorSpace {
	case "DeviceRGB":
		if len(img.Data) < img.Width*img.Height*3 {
			return nil, fmt.Errorf("RGB image data too short: %d bytes", len(img.Data))
		}
		out := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			out.Pix[4*i] = img.Data[3*i]
			out.Pix[4*i+1] = img.Data[3*i+1]
			out.Pix[4*i+2] = img.Data[3*i+2]
			out.Pix[4*i+3] = 0xff
		}
		return out, nil
	case "DeviceGray":
		if len(img.Data) < img.Width*img.Height {
			return nil, fmt.Errorf("gray image data too short: %d bytes", len(img.Data))
		}
		out := image.NewGray(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			out.SetGray(i%img.Width, i/img.Width, color.Gray{Y: img.Data[i]})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported color space: %s", img.ColorSpace)
	}
}
