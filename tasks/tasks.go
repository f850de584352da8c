// Package tasks holds the built-in card factories and the static registry
// literal that lists them.
package tasks

import (
	"math/rand/v2"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/registry"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/tex"
)

// Default is the task a worksheet draws from when none is named.
const Default = "algebra.PerfectSquaresTask"

// graphImports are the imports of cards that place a figure beside a list.
var graphImports = []string{"amsmath", "wrapfig", "enumitem"}

// Entries returns the built-in tasks. The slice is freshly allocated.
func Entries() []registry.Entry {
	return []registry.Entry{
		{
			Package:     "algebra",
			Name:        "PerfectSquaresTask",
			Description: "Find the square roots of a perfect square",
			Categories:  []task.Category{task.AlgebraI, task.AlgebraII},
			Factory:     task.FactoryFunc(PerfectSquares),
		},
		{
			Package:     "algebra",
			Name:        "SolveQuadByEqualSquares1Task",
			Description: "Solve a squared binomial equal to a perfect square",
			Categories:  []task.Category{task.AlgebraI, task.AlgebraII},
			Factory:     task.FactoryFunc(SolveQuadByEqualSquares),
		},
		{
			Package:     "algebra",
			Name:        "RationalToDecimalTask",
			Description: "Write a fraction as a decimal and say whether it repeats",
			Categories:  []task.Category{task.AlgebraI},
			Factory:     task.FactoryFunc(RationalToDecimal),
		},
		{
			Package:     "graphs",
			Name:        "LinearPlotTask",
			Description: "Plot a line; the answer is a link to its graph",
			Categories:  []task.Category{task.AlgebraI},
			Factory:     task.FactoryFunc(LinearPlot),
		},
		{
			Package:     "graphs",
			Name:        "ParabolaFeaturesTask",
			Description: "Read a feature of a parabola from its graph",
			Categories:  []task.Category{task.AlgebraI, task.AlgebraII},
			Factory:     task.FactoryFunc(ParabolaFeatures),
		},
		{
			Package:     "graphs",
			Name:        "ExpoQualitativeTask",
			Description: "Classify an exponential function from its graph",
			Categories:  []task.Category{task.AlgebraI, task.AlgebraII},
			Factory:     task.FactoryFunc(ExpoQualitative),
		},
	}
}

// Registry returns a registry of the built-in tasks.
func Registry() (*registry.Registry, error) {
	return registry.New(Entries()...)
}

// rng returns the environment's random source, or a randomly seeded one.
func rng(env task.Env) *rand.Rand {
	if env.Rand != nil {
		return env.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func style(env task.Env) task.Style {
	if env.Style == 0 {
		return task.Minimal
	}
	return env.Style
}

// centredCard is the layout shared by the equation cards: a white spacer
// line, then the problem and its QR code answer.
func centredCard(env task.Env, problem, answer string, imports []string) (model.Card, error) {
	body, err := tex.TaskCard(problem, answer, "2cm", style(env))
	if err != nil {
		return model.Card{}, err
	}
	markup := tex.Color(".", "white") + "\n" + `\\` + "\n" + body
	return model.NewCard(markup, imports, nil), nil
}
