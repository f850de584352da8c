// Package render typesets an assembled document into a PDF with an external
// program (pdflatex by default) and validates what it produced.
package render

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/format"
	"github.com/tsawler/taskcards/internal/command"
	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/reader"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/tex"
	"github.com/tsawler/taskcards/writer"
)

// DefaultCommand is the typesetter used when none is configured.
const DefaultCommand = "pdflatex"

// Renderer writes the typesetter source for a document and runs the
// typesetter on it.
type Renderer struct {
	Runner  command.Runner
	Command string
	Timeout time.Duration
	Style   task.Style // zero means task.Minimal
	Logger  *zap.Logger
}

// Args returns the typesetter command line for texFile.
func (r *Renderer) Args(texFile string) []string {
	return []string{"-interaction=nonstopmode", "-halt-on-error", texFile}
}

// Render writes <dir>/<name>.tex, typesets it inside dir and returns the
// path of <dir>/<name>.pdf. The PDF must exist, carry the PDF signature and
// have exactly one page per document page; anything else is a render error.
// A document without pages is written as an empty PDF without running the
// typesetter, which refuses to produce one.
func (r *Renderer) Render(ctx context.Context, doc *model.Document, dir, name string) (string, error) {
	const op = "render"
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	style := r.Style
	if style == 0 {
		style = task.Minimal
	}

	texPath := filepath.Join(dir, name+".tex")
	pdfPath := filepath.Join(dir, name+".pdf")

	f, err := os.Create(texPath)
	if err != nil {
		return "", taskerr.Wrap(taskerr.Render, op, err)
	}
	if err := tex.Write(f, doc, style); err != nil {
		f.Close()
		return "", taskerr.Wrap(taskerr.Render, op, err)
	}
	if err := f.Close(); err != nil {
		return "", taskerr.Wrap(taskerr.Render, op, err)
	}

	if doc.PageCount() == 0 {
		if err := writeEmpty(pdfPath); err != nil {
			return "", taskerr.Wrap(taskerr.Render, op, err)
		}
		return pdfPath, nil
	}

	cmdName := r.Command
	if cmdName == "" {
		cmdName = DefaultCommand
	}
	res, err := r.Runner.Run(ctx, command.Cmd{
		Name:    cmdName,
		Args:    r.Args(name + ".tex"),
		Dir:     dir,
		Timeout: r.Timeout,
	})
	if err != nil {
		return "", taskerr.Wrap(taskerr.Render, op, err)
	}
	logger.Info("typeset document",
		zap.String("command", cmdName),
		zap.Int("pages", doc.PageCount()),
		zap.Duration("duration", res.Duration))

	if err := Validate(pdfPath, doc.PageCount()); err != nil {
		return "", err
	}
	return pdfPath, nil
}

// Validate checks that pdfPath is a readable PDF with pages pages.
func Validate(pdfPath string, pages int) error {
	const op = "render.validate"
	if err := format.Expect(pdfPath, format.PDF); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return taskerr.Renderf(op, "typesetter produced no %s", filepath.Base(pdfPath))
		}
		return taskerr.Renderf(op, "%v", err)
	}
	r, err := reader.Open(pdfPath)
	if err != nil {
		return taskerr.Renderf(op, "%v", err)
	}
	n, err := r.PageCount()
	if err != nil {
		return taskerr.Renderf(op, "%v", err)
	}
	if n != pages {
		return taskerr.Renderf(op, "%s has %d pages, expected %d", filepath.Base(pdfPath), n, pages)
	}
	return nil
}

func writeEmpty(path string) error {
	d := writer.New()
	root := d.Add(core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{}, "Count": core.Int(0)})
	catalog := d.Add(core.Dict{"Type": core.Name("Catalog"), "Pages": root})

	var buf bytes.Buffer
	if err := d.Write(&buf, catalog, core.IndirectRef{}); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
