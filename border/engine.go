package border

import (
	"context"
	"fmt"
	"image"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/taskcards/internal/scratch"
	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/writer"
)

// Rasterizer renders one page (1-based) of a PDF to a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, page int) (image.Image, error)
}

// CardFunc inspects a finished card. It is called concurrently for
// different pages.
type CardFunc func(ctx context.Context, page int, q model.Quadrant, card image.Image) error

// Engine borders every page of a rendered document.
type Engine struct {
	Template    *Template
	Margins     Margins
	Rasterizer  Rasterizer
	Dir         *scratch.Dir
	DPI         int // resolution of the raster pages, for page size
	JPEGQuality int // 0 stores pages losslessly
	Workers     int // 0 means GOMAXPROCS
	Logger      *zap.Logger
	OnCard      CardFunc // optional
}

// PagePath returns the single-page PDF written for page index i (0-based).
func (e *Engine) PagePath(i int) string {
	return e.Dir.Join(fmt.Sprintf("out_%d.pdf", i))
}

// Apply borders pageCount pages of src and merges them, in page order, into
// dstName inside the engine's directory. It returns the final path. On
// failure no file named dstName is created.
func (e *Engine) Apply(ctx context.Context, src string, pageCount int, dstName string) (string, error) {
	if e.Template == nil {
		return "", taskerr.Assetf("border.apply", "no border template loaded")
	}
	if e.Rasterizer == nil || e.Dir == nil {
		return "", taskerr.Configurationf("border.apply", "engine needs a rasterizer and a directory")
	}
	if e.DPI <= 0 {
		return "", taskerr.Configurationf("border.apply", "invalid resolution %d dpi", e.DPI)
	}
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	paths := make([]string, pageCount)
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			path, err := e.page(gctx, src, i, logger)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	err := e.Dir.WriteAtomic(dstName, func(f *os.File) error {
		return writer.MergeFiles(f, paths...)
	})
	if err != nil {
		return "", taskerr.Wrap(taskerr.Render, "border.merge", err)
	}
	logger.Info("merged bordered pages", zap.Int("pages", pageCount), zap.String("path", e.Dir.Join(dstName)))
	return e.Dir.Join(dstName), nil
}

// page rasterizes, frames and writes one page.
func (e *Engine) page(ctx context.Context, src string, i int, logger *zap.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raster, err := e.Rasterizer.Rasterize(ctx, src, i+1)
	if err != nil {
		return "", taskerr.Wrap(taskerr.Render, "border.rasterize", err)
	}

	bordered, cards, err := e.Template.ApplyPage(raster, e.Margins)
	if err != nil {
		return "", err
	}
	if e.OnCard != nil {
		for q, card := range cards {
			if err := e.OnCard(ctx, i+1, model.Quadrant(q), card); err != nil {
				return "", err
			}
		}
	}

	path := e.PagePath(i)
	f, err := os.Create(path)
	if err != nil {
		return "", taskerr.Wrap(taskerr.Render, "border.write", err)
	}
	if err := writer.WriteImagePage(f, bordered, e.DPI, e.JPEGQuality); err != nil {
		f.Close()
		return "", taskerr.Wrap(taskerr.Render, "border.write", err)
	}
	if err := f.Close(); err != nil {
		return "", taskerr.Wrap(taskerr.Render, "border.write", err)
	}

	size := raster.Bounds().Size()
	logger.Debug("bordered page", zap.Int("page", i+1), zap.Int("width", size.X), zap.Int("height", size.Y))
	return path, nil
}
