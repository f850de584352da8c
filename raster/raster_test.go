package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/taskcards/internal/command"
	"github.com/tsawler/taskcards/internal/pdftest"
	"github.com/tsawler/taskcards/taskerr"
)

// typeset writes a PDF with pages pdftest pages of size px.
func typeset(t *testing.T, dir string, pages int, size image.Point) string {
	t.Helper()
	var src []byte
	for i := 1; i <= pages; i++ {
		src = append(src, []byte(pdftest.PageMarker+"\n")...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.tex"), src, 0o644))
	_, err := pdftest.Typesetter(size, 72).Run(context.Background(), command.Cmd{Dir: dir, Args: []string{"doc.tex"}})
	require.NoError(t, err)
	return filepath.Join(dir, "doc.pdf")
}

func TestArgs(t *testing.T) {
	r := &Rasterizer{DPI: 150}
	assert.Equal(t,
		[]string{"-r", "150", "-f", "3", "-l", "3", "-png", "-singlefile", "in.pdf", "out/page_3"},
		r.Args("in.pdf", 3, "out/page_3"))
}

func TestRasterize(t *testing.T) {
	dir := t.TempDir()
	size := image.Pt(48, 32)
	pdf := typeset(t, dir, 3, size)

	var calls []command.Cmd
	fake := pdftest.Rasterizer()
	r := &Rasterizer{
		DPI: 72,
		Dir: dir,
		Runner: command.RunnerFunc(func(ctx context.Context, cmd command.Cmd) (command.Result, error) {
			calls = append(calls, cmd)
			return fake(ctx, cmd)
		}),
	}

	img, err := r.Rasterize(context.Background(), pdf, 2)
	require.NoError(t, err)
	assert.Equal(t, size, img.Bounds().Size())

	gray, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(pdftest.Shade(2).Y), gray>>8)

	require.Len(t, calls, 1)
	assert.Equal(t, DefaultCommand, calls[0].Name)
	_, err = os.Stat(filepath.Join(dir, "page_2.png"))
	assert.ErrorIs(t, err, os.ErrNotExist, "intermediate bitmap should be removed")
}

func TestRasterizeErrors(t *testing.T) {
	dir := t.TempDir()
	notPNG := command.RunnerFunc(func(ctx context.Context, cmd command.Cmd) (command.Result, error) {
		prefix := cmd.Args[len(cmd.Args)-1]
		return command.Result{}, os.WriteFile(prefix+".png", []byte("P6 not a png"), 0o644)
	})
	silent := command.RunnerFunc(func(context.Context, command.Cmd) (command.Result, error) {
		return command.Result{}, nil
	})

	tests := []struct {
		name   string
		runner command.Runner
		page   int
		dpi    int
		want   error
	}{
		{"runner fails", pdftest.Failing(errors.New("exit status 1")), 1, 72, taskerr.ErrRender},
		{"no output", silent, 1, 72, taskerr.ErrRender},
		{"not png", notPNG, 1, 72, taskerr.ErrRender},
		{"bad page", silent, 0, 72, taskerr.ErrConfiguration},
		{"bad dpi", silent, 1, 0, taskerr.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Rasterizer{Runner: tt.runner, DPI: tt.dpi, Dir: dir}
			_, err := r.Rasterize(context.Background(), "in.pdf", tt.page)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRasterizeKeepsCommandCause(t *testing.T) {
	r := &Rasterizer{
		Runner: pdftest.Failing(fmt.Errorf("pdftoppm %w after 1m0s", command.ErrTimeout)),
		DPI:    72,
		Dir:    t.TempDir(),
	}
	_, err := r.Rasterize(context.Background(), "in.pdf", 4)
	assert.ErrorIs(t, err, taskerr.ErrRender)
	assert.ErrorIs(t, err, command.ErrTimeout)
	assert.Contains(t, err.Error(), "page 4")
}
