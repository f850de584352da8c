package reader_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/reader"
	"github.com/tsawler/taskcards/writer"
)

func solidGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img
}

// TestPageImagesRGB tests extraction of a lossless page image
func TestPageImagesRGB(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, writer.WriteImagePage(&buf, src, 72, 0))

	r, err := reader.NewReader(buf.Bytes())
	require.NoError(t, err)
	page, err := r.GetPage(0)
	require.NoError(t, err)
	images, err := r.PageImages(page)
	require.NoError(t, err)
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "Im0", img.Name)
	assert.Equal(t, "DeviceRGB", img.ColorSpace)
	assert.Equal(t, 8, img.BitsPerComponent)

	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.Equal(t, color.RGBAModel.Convert(color.RGBA{R: 10, G: 20, B: 30, A: 255}), decoded.At(2, 1))
}

// TestPageImageDecodeGray tests raw gray samples
func TestPageImageDecodeGray(t *testing.T) {
	img := reader.PageImage{Width: 2, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 8, Data: []byte{0, 255}}
	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.Equal(t, color.Gray{Y: 255}, decoded.At(1, 0))
}

// TestPageImageDecodeErrors tests unsupported layouts
func TestPageImageDecodeErrors(t *testing.T) {
	tests := []reader.PageImage{
		{Width: 2, Height: 2, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{1, 2, 3}},
		{Width: 1, Height: 1, ColorSpace: "DeviceCMYK", BitsPerComponent: 8, Data: []byte{1, 2, 3, 4}},
		{Width: 1, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 1, Data: []byte{1}},
		{Width: 1, Height: 1, Filter: "DCTDecode", Data: []byte("not jpeg")},
	}
	for i, img := range tests {
		_, err := img.Decode()
		assert.Error(t, err, "case %d", i)
	}
}

// TestPageImagesSkipsForms tests that form XObjects are ignored
func TestPageImagesSkipsForms(t *testing.T) {
	d := writer.New()
	catalog := d.Reserve()
	root := d.Reserve()
	form := d.Add(&core.Stream{Dict: core.Dict{"Type": core.Name("XObject"), "Subtype": core.Name("Form")}, Data: []byte("q Q")})
	page := d.Add(core.Dict{
		"Type":      core.Name("Page"),
		"Parent":    root,
		"MediaBox":  core.Array{core.Int(0), core.Int(0), core.Int(1), core.Int(1)},
		"Contents":  d.Add(&core.Stream{Dict: core.Dict{}, Data: []byte("/Fm0 Do")}),
		"Resources": core.Dict{"XObject": core.Dict{"Fm0": form}},
	})
	d.Set(root, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{page}, "Count": core.Int(1)})
	d.Set(catalog, core.Dict{"Type": core.Name("Catalog"), "Pages": root})
	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf, catalog, core.IndirectRef{}))

	r, err := reader.NewReader(buf.Bytes())
	require.NoError(t, err)
	p, err := r.GetPage(0)
	require.NoError(t, err)
	images, err := r.PageImages(p)
	require.NoError(t, err)
	assert.Empty(t, images)
}

// TestPageImagesDrawOrder tests that images come back in painting order and
// that unpainted resources are ignored
func TestPageImagesDrawOrder(t *testing.T) {
	gray := func(v byte) *core.Stream {
		return &core.Stream{Dict: core.Dict{
			"Type": core.Name("XObject"), "Subtype": core.Name("Image"),
			"Width": core.Int(1), "Height": core.Int(1),
			"ColorSpace": core.Name("DeviceGray"), "BitsPerComponent": core.Int(8),
		}, Data: []byte{v}}
	}

	d := writer.New()
	catalog := d.Reserve()
	root := d.Reserve()
	first := d.Add(&core.Stream{Dict: core.Dict{}, Data: []byte("q /ImB Do Q")})
	second := d.Add(&core.Stream{Dict: core.Dict{}, Data: []byte("q /ImA Do /ImB Do Q")})
	page := d.Add(core.Dict{
		"Type":     core.Name("Page"),
		"Parent":   root,
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(1), core.Int(1)},
		"Contents": core.Array{first, second},
		"Resources": core.Dict{"XObject": core.Dict{
			"ImA":    d.Add(gray(1)),
			"ImB":    d.Add(gray(2)),
			"Unused": d.Add(gray(3)),
		}},
	})
	d.Set(root, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{page}, "Count": core.Int(1)})
	d.Set(catalog, core.Dict{"Type": core.Name("Catalog"), "Pages": root})
	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf, catalog, core.IndirectRef{}))

	r, err := reader.NewReader(buf.Bytes())
	require.NoError(t, err)
	p, err := r.GetPage(0)
	require.NoError(t, err)

	content, err := r.PageContent(p)
	require.NoError(t, err)
	assert.Equal(t, "q /ImB Do Q\nq /ImA Do /ImB Do Q", string(content))

	images, err := r.PageImages(p)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "ImB", images[0].Name)
	assert.Equal(t, []byte{2}, images[0].Data)
	assert.Equal(t, "ImA", images[1].Name)
}
