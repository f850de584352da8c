package taskcards

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/taskcards/assemble"
	"github.com/tsawler/taskcards/border"
	"github.com/tsawler/taskcards/internal/command"
	"github.com/tsawler/taskcards/internal/config"
	"github.com/tsawler/taskcards/internal/scratch"
	"github.com/tsawler/taskcards/ocr"
	"github.com/tsawler/taskcards/raster"
	"github.com/tsawler/taskcards/registry"
	"github.com/tsawler/taskcards/render"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/upload"
)

// Generator configures and runs the card pipeline.
type Generator struct {
	reg        *registry.Registry
	ids        []string
	categories []task.Category
	pages      int
	seed       *uint64
	proof      bool

	cfg        *config.Config
	logger     *zap.Logger
	uploader   task.Uploader
	typesetter command.Runner
	rasterizer command.Runner
}

// New returns a Generator drawing tasks from reg. It generates one page
// with the default configuration until told otherwise.
func New(reg *registry.Registry) *Generator {
	return &Generator{reg: reg, pages: 1}
}

// clone copies g, including its slices, so chained calls never share
// state with the receiver.
func (g *Generator) clone() *Generator {
	c := *g
	c.ids = append([]string(nil), g.ids...)
	c.categories = append([]task.Category(nil), g.categories...)
	if g.seed != nil {
		s := *g.seed
		c.seed = &s
	}
	return &c
}

// Tasks adds tasks by qualified identifier or display name.
//
// Example:
//
//	taskcards.New(reg).Tasks("PerfectSquaresTask", "geometry.ParabolaFeaturesTask")
func (g *Generator) Tasks(ids ...string) *Generator {
	c := g.clone()
	c.ids = append(c.ids, ids...)
	return c
}

// Category adds every task in category cat.
func (g *Generator) Category(cat task.Category) *Generator {
	c := g.clone()
	c.categories = append(c.categories, cat)
	return c
}

// Pages sets the number of pages to generate.
func (g *Generator) Pages(n int) *Generator {
	c := g.clone()
	c.pages = n
	return c
}

// Seed makes the drawn cards reproducible.
func (g *Generator) Seed(seed uint64) *Generator {
	c := g.clone()
	c.seed = &seed
	return c
}

// Config sets the configuration. Without one the defaults are used.
func (g *Generator) Config(cfg *config.Config) *Generator {
	c := g.clone()
	c.cfg = cfg
	return c
}

// Logger sets the logger. Without one nothing is logged.
func (g *Generator) Logger(l *zap.Logger) *Generator {
	c := g.clone()
	c.logger = l
	return c
}

// Proof reads every finished card back with OCR and reports the ones
// without legible text in Result.BlankCards. It needs a binary built with
// the "ocr" tag.
func (g *Generator) Proof() *Generator {
	c := g.clone()
	c.proof = true
	return c
}

// Uploader replaces the uploader built from the configuration's upload
// section.
func (g *Generator) Uploader(u task.Uploader) *Generator {
	c := g.clone()
	c.uploader = u
	return c
}

// Runners replaces the command runners of the typesetter and the
// rasterizer. A nil runner keeps the default, which executes the
// configured program.
func (g *Generator) Runners(typesetter, rasterizer command.Runner) *Generator {
	c := g.clone()
	c.typesetter = typesetter
	c.rasterizer = rasterizer
	return c
}

// Entries resolves the selected tasks: identifiers first, in the order
// given, then each category's tasks. Duplicates are dropped. An unknown
// identifier is a lookup error.
func (g *Generator) Entries() ([]registry.Entry, error) {
	if g.reg == nil {
		return nil, taskerr.Configurationf("taskcards", "no task registry")
	}
	entries, err := g.reg.Enumerate(g.ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.ID()] = true
	}
	for _, cat := range g.categories {
		for _, e := range g.reg.ByCategory(cat) {
			if !seen[e.ID()] {
				seen[e.ID()] = true
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// Generate runs the pipeline. Every stage's failure aborts the run; a
// failed run never leaves a bordered document behind.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := g.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// Checks below run before the output directory is reset, so a failure
	// must still drop the artifacts of an earlier run.
	fail := func(err error) (*Result, error) {
		discardArtifacts(cfg.Output.Dir, logger)
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	if g.pages < 0 {
		return fail(taskerr.Configurationf("taskcards", "page count must not be negative, got %d", g.pages))
	}

	entries, err := g.Entries()
	if err != nil {
		return fail(err)
	}
	tmpl, err := border.LoadTemplate(cfg.Border.Template)
	if err != nil {
		return fail(err)
	}
	uploader, err := g.buildUploader(cfg, logger)
	if err != nil {
		return fail(err)
	}
	proofer, closeOCR, err := g.buildProofer(logger)
	if err != nil {
		return fail(err)
	}
	defer closeOCR()

	abs, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return fail(fmt.Errorf("resolving output directory: %w", err))
	}
	dir, err := scratch.Reset(abs)
	if err != nil {
		return fail(err)
	}
	logger.Info("starting run",
		zap.Int("pages", g.pages),
		zap.String("tasks", taskList(entries)),
		zap.String("dir", dir.Path()))

	env := task.Env{ScratchDir: dir.Path(), Uploader: uploader, Style: task.Minimal}
	if g.seed != nil {
		env.Rand = rand.New(rand.NewPCG(*g.seed, *g.seed))
	}
	asm := &assemble.Assembler{Factories: registry.Factories(entries), Env: env, Logger: logger}
	doc, err := asm.Assemble(ctx, g.pages)
	if err != nil {
		return nil, err
	}

	exec := command.Exec{Logger: logger}
	rend := &render.Renderer{
		Runner:  runnerOr(g.typesetter, exec),
		Command: cfg.Render.Command,
		Timeout: cfg.RenderTimeout(),
		Logger:  logger,
	}
	rendered, err := rend.Render(ctx, doc, dir.Path(), RenderedName)
	if err != nil {
		return nil, err
	}

	engine := &border.Engine{
		Template: tmpl,
		Margins:  border.Margins{X: cfg.Border.Margins.X, Y: cfg.Border.Margins.Y},
		Rasterizer: &raster.Rasterizer{
			Runner:  runnerOr(g.rasterizer, exec),
			Command: cfg.Raster.Command,
			DPI:     cfg.Raster.DPI,
			Timeout: cfg.RasterTimeout(),
			Dir:     dir.Path(),
			Logger:  logger,
		},
		Dir:         dir,
		DPI:         cfg.Raster.DPI,
		JPEGQuality: cfg.Border.JPEGQuality,
		Workers:     cfg.Border.Workers,
		Logger:      logger,
	}
	if proofer != nil {
		engine.OnCard = proofer.Card
	}
	bordered, err := engine.Apply(ctx, rendered, doc.PageCount(), BorderedName)
	if err != nil {
		return nil, err
	}

	res := &Result{Document: doc, RenderedPath: rendered, BorderedPath: bordered}
	if proofer != nil {
		res.BlankCards = proofer.Blank()
	}
	logger.Info("run complete", zap.String("bordered", bordered), zap.Int("pages", doc.PageCount()))
	return res, nil
}

func (g *Generator) buildUploader(cfg *config.Config, logger *zap.Logger) (task.Uploader, error) {
	if g.uploader != nil {
		return g.uploader, nil
	}
	if !cfg.UploadEnabled() {
		return nil, nil
	}
	return upload.New(upload.Config{
		UploadURL: cfg.Upload.UploadURL,
		BaseURL:   cfg.Upload.BaseURL,
		Secret:    cfg.Upload.Secret,
	}, upload.WithLogger(logger))
}

// buildProofer returns a nil proofer when proofing is off.
func (g *Generator) buildProofer(logger *zap.Logger) (*ocr.Proofer, func(), error) {
	if !g.proof {
		return nil, func() {}, nil
	}
	if !ocr.Enabled {
		return nil, nil, taskerr.Wrap(taskerr.Configuration, "taskcards.proof", ocr.ErrOCRNotEnabled)
	}
	client, err := ocr.New()
	if err != nil {
		return nil, nil, taskerr.Wrap(taskerr.Configuration, "taskcards.proof", err)
	}
	return ocr.NewProofer(client, logger), func() { client.Close() }, nil
}

// discardArtifacts removes the rendered and bordered documents of an earlier
// run from dir.
func discardArtifacts(dir string, logger *zap.Logger) {
	if dir == "" {
		return
	}
	for _, name := range []string{BorderedName, RenderedName + ".pdf"} {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("removing stale artifact", zap.String("path", path), zap.Error(err))
		}
	}
}

func runnerOr(r command.Runner, fallback command.Runner) command.Runner {
	if r != nil {
		return r
	}
	return fallback
}

func taskList(entries []registry.Entry) string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID()
	}
	return strings.Join(ids, ",")
}
