package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/taskcards"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/tasks"
)

type generateOptions struct {
	pages      int
	tasks      []string
	categories []string
	seed       uint64
	proof      bool
	output     string
	template   string
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate [task...]",
		Short: "Generate a bordered worksheet",
		Long: `Generate assembles the requested number of pages from the given tasks,
named by qualified id (algebra.PerfectSquaresTask) or display name
(PerfectSquaresTask), and from every task in the given categories. With
neither tasks nor categories it draws from PerfectSquaresTask.`,
		Example: `  taskcards generate -n 2 PerfectSquaresTask
  taskcards generate --tasks RationalToDecimalTask --category geometry --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts, args)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.pages, "pages", "n", 1, "Number of pages")
	f.StringSliceVarP(&opts.tasks, "tasks", "t", nil, "Tasks to draw from (repeatable, comma separated)")
	f.StringSliceVar(&opts.categories, "category", nil, "Add every task of a category: algebra1, geometry, algebra2")
	f.Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible worksheets")
	f.BoolVar(&opts.proof, "proof", false, "Check every card for legible text with OCR (needs -tags ocr)")
	f.StringVarP(&opts.output, "output", "o", "", "Output directory (overrides output.dir)")
	f.StringVar(&opts.template, "template", "", "Border template image (overrides border.template)")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions, args []string) error {
	cfg := a.cfg
	if opts.output != "" {
		cfg.Output.Dir = opts.output
	}
	if opts.template != "" {
		cfg.Border.Template = opts.template
	}

	reg, err := tasks.Registry()
	if err != nil {
		return err
	}
	g := taskcards.New(reg).
		Tasks(selectedTasks(opts, args)...).
		Pages(opts.pages).
		Config(cfg).
		Logger(a.logger)
	for _, name := range opts.categories {
		c, err := task.ParseCategory(name)
		if err != nil {
			return taskerr.Wrap(taskerr.Configuration, "generate", err)
		}
		g = g.Category(c)
	}
	if cmd.Flags().Changed("seed") {
		g = g.Seed(opts.seed)
	}
	if opts.proof {
		g = g.Proof()
	}

	res, err := g.Generate(cmd.Context())
	if err != nil {
		return err
	}

	for _, ref := range res.BlankCards {
		a.logger.Warn("card may be illegible", zap.Stringer("card", ref))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d pages written to %s\n", res.Document.PageCount(), res.BorderedPath)
	return nil
}

// selectedTasks joins --tasks and positional ids, falling back to
// tasks.Default when nothing at all was selected.
func selectedTasks(opts generateOptions, args []string) []string {
	ids := append(append([]string(nil), opts.tasks...), args...)
	if len(ids) == 0 && len(opts.categories) == 0 {
		return []string{tasks.Default}
	}
	return ids
}
