// Package raster converts pages of a PDF to bitmaps with an external
// program (pdftoppm by default).
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/taskcards/format"
	"github.com/tsawler/taskcards/internal/command"
	"github.com/tsawler/taskcards/taskerr"
)

// DefaultCommand is the rasterizer used when none is configured.
const DefaultCommand = "pdftoppm"

// Rasterizer runs a pdftoppm-compatible command. It is safe for concurrent
// use as long as its Runner is.
type Rasterizer struct {
	Runner  command.Runner
	Command string
	DPI     int
	Timeout time.Duration
	Dir     string // where intermediate PNG files are written
	Logger  *zap.Logger
}

// Args returns the command line that renders page of pdfPath to
// prefix.png.
func (r *Rasterizer) Args(pdfPath string, page int, prefix string) []string {
	p := strconv.Itoa(page)
	return []string{"-r", strconv.Itoa(r.DPI), "-f", p, "-l", p, "-png", "-singlefile", pdfPath, prefix}
}

// Rasterize renders one page (1-based) and decodes it. The intermediate
// PNG is removed once decoded.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath string, page int) (image.Image, error) {
	const op = "raster"
	if page < 1 {
		return nil, taskerr.Configurationf(op, "invalid page number %d", page)
	}
	if r.DPI <= 0 {
		return nil, taskerr.Configurationf(op, "invalid resolution %d dpi", r.DPI)
	}
	name := r.Command
	if name == "" {
		name = DefaultCommand
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefix := filepath.Join(r.Dir, fmt.Sprintf("page_%d", page))
	pngPath := prefix + ".png"

	res, err := r.Runner.Run(ctx, command.Cmd{
		Name:    name,
		Args:    r.Args(pdfPath, page, prefix),
		Timeout: r.Timeout,
	})
	if err != nil {
		return nil, taskerr.Wrap(taskerr.Render, op, fmt.Errorf("rasterizing page %d: %w", page, err))
	}
	logger.Debug("rasterized page", zap.Int("page", page), zap.Duration("duration", res.Duration))

	data, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, taskerr.Renderf(op, "%s produced no bitmap for page %d: %v", name, page, err)
	}
	defer os.Remove(pngPath)

	if kind := format.DetectFromMagic(data); kind != format.PNG {
		return nil, taskerr.Renderf(op, "page %d bitmap is %s, not PNG", page, kind)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, taskerr.Renderf(op, "decoding page %d bitmap: %v", page, err)
	}
	return img, nil
}
