// Package pdftest stands in for the external typesetter and rasterizer in
// tests. Both fakes speak the same command lines as the real programs and
// produce real files through the writer and reader packages.
package pdftest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/taskcards/internal/command"
	"github.com/tsawler/taskcards/reader"
	"github.com/tsawler/taskcards/writer"
)

// PageMarker starts every page in the typesetter source.
const PageMarker = "% Begin page "

// Shade is the background of page n (1-based) produced by Typesetter.
func Shade(page int) color.Gray {
	return color.Gray{Y: uint8(40 * page % 200)}
}

// Page draws page n: a Shade(n) background with a black dot in the middle
// of every quadrant.
func Page(size image.Point, page int) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(Shade(page)), image.Point{}, draw.Src)
	for _, c := range []image.Point{{1, 1}, {3, 1}, {1, 3}, {3, 3}} {
		at := image.Point{X: size.X * c.X / 4, Y: size.Y * c.Y / 4}
		dot := image.Rect(at.X-2, at.Y-2, at.X+2, at.Y+2)
		draw.Draw(img, dot, image.Black, image.Point{}, draw.Src)
	}
	return img
}

// Typesetter returns a runner that reads the .tex file named by its last
// argument from cmd.Dir and writes a PDF with one lossless Page per page
// marker next to it.
func Typesetter(size image.Point, dpi int) command.RunnerFunc {
	return func(ctx context.Context, cmd command.Cmd) (command.Result, error) {
		if len(cmd.Args) == 0 {
			return command.Result{}, errors.New("no input file")
		}
		texFile := filepath.Join(cmd.Dir, cmd.Args[len(cmd.Args)-1])
		src, err := os.ReadFile(texFile)
		if err != nil {
			return command.Result{}, err
		}
		pages := strings.Count(string(src), PageMarker)

		inputs := make([]*reader.Reader, pages)
		for i := range inputs {
			var buf bytes.Buffer
			if err := writer.WriteImagePage(&buf, Page(size, i+1), dpi, 0); err != nil {
				return command.Result{}, err
			}
			if inputs[i], err = reader.NewReader(buf.Bytes()); err != nil {
				return command.Result{}, err
			}
		}

		out, err := os.Create(strings.TrimSuffix(texFile, ".tex") + ".pdf")
		if err != nil {
			return command.Result{}, err
		}
		defer out.Close()
		if err := writer.Merge(out, inputs...); err != nil {
			return command.Result{}, err
		}
		return command.Result{Stdout: []byte(fmt.Sprintf("Output written (%d pages)", pages))}, nil
	}
}

// Rasterizer returns a runner that accepts pdftoppm's
// "-f N ... -singlefile in.pdf prefix" arguments and writes the image of
// page N to prefix.png.
func Rasterizer() command.RunnerFunc {
	return func(ctx context.Context, cmd command.Cmd) (command.Result, error) {
		args := cmd.Args
		if len(args) < 2 {
			return command.Result{}, errors.New("usage: [options] pdf prefix")
		}
		page := 1
		for i, a := range args[:len(args)-2] {
			if a == "-f" && i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil {
					return command.Result{}, err
				}
				page = n
			}
		}
		pdfPath, prefix := args[len(args)-2], args[len(args)-1]

		r, err := reader.Open(pdfPath)
		if err != nil {
			return command.Result{}, err
		}
		p, err := r.GetPage(page - 1)
		if err != nil {
			return command.Result{}, err
		}
		images, err := r.PageImages(p)
		if err != nil {
			return command.Result{}, err
		}
		if len(images) == 0 {
			return command.Result{}, fmt.Errorf("page %d has no image", page)
		}
		img, err := images[0].Decode()
		if err != nil {
			return command.Result{}, err
		}

		out, err := os.Create(prefix + ".png")
		if err != nil {
			return command.Result{}, err
		}
		defer out.Close()
		return command.Result{}, png.Encode(out, img)
	}
}

// Failing returns a runner that always fails with err.
func Failing(err error) command.RunnerFunc {
	return func(context.Context, command.Cmd) (command.Result, error) {
		return command.Result{Stderr: []byte(err.Error())}, err
	}
}
