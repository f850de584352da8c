package tasks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/tex"
)

// PerfectSquares asks for the square roots of n^2 with n in [2, 20].
func PerfectSquares(_ context.Context, env task.Env) (model.Card, error) {
	r := rng(env)
	root := between(r, 2, 20)

	problem := tex.PromptAndEquation(
		tex.ScaleEquation("Solve for $x$", "2")+tex.Color(".", "white"),
		tex.ScaleEquation(fmt.Sprintf("$x^2 = %d$", root*root), "3"),
		"2em",
	)
	return centredCard(env, problem, fmt.Sprintf("%d or -%d", root, root), task.DefaultImports)
}

// SolveQuadByEqualSquares asks for the solutions of (x + c)^2 = n^2 with
// n in [2, 12] and c in [-10, 10].
func SolveQuadByEqualSquares(_ context.Context, env task.Env) (model.Card, error) {
	r := rng(env)
	root := between(r, 2, 12)
	shift := between(r, -10, 10)

	sign, number := "+", shift
	if shift < 0 {
		sign, number = "-", -shift
	}

	problem := tex.PromptAndEquation(
		tex.ScaleEquation("Solve for $x$", "2")+tex.Color(".", "white"),
		tex.ScaleEquation(fmt.Sprintf("$(x %s %d)^2 = %d$", sign, number, root*root), "3"),
		"2em",
	)
	answer := fmt.Sprintf("%d or %d", root-shift, -root-shift)
	return centredCard(env, problem, answer, task.DefaultImports)
}

var noisePrimes = []int{3, 7, 9, 11, 13, 17, 19}

// RationalToDecimal asks for the decimal form of a fraction and whether it
// terminates. Terminating denominators are products of 2s and 5s; repeating
// ones carry at least one other factor.
func RationalToDecimal(_ context.Context, env task.Env) (model.Card, error) {
	r := rng(env)
	terminates := r.IntN(2) == 0
	positive := r.IntN(2) == 0

	const lo, hi = 1, 150
	denom := 0
	for denom < lo || denom > hi {
		denom = 1
		if terminates {
			for range between(r, 0, 5) {
				denom *= 2
			}
			for range between(r, 0, 2) {
				denom *= 5
			}
			continue
		}

		// 0, 1 or 2 factors of 2 or 5 weighted 50/35/15
		var plain int
		switch p := r.Float64(); {
		case p < 0.5:
			plain = 0
		case p < 0.85:
			plain = 1
		default:
			plain = 2
		}
		for range plain {
			if r.IntN(2) == 0 {
				denom *= 2
			} else {
				denom *= 5
			}
		}
		for range between(r, 1, 3) {
			denom *= noisePrimes[r.IntN(len(noisePrimes))]
		}
	}
	num := between(r, lo, hi)

	eqn := fmt.Sprintf(`\frac{%d}{%d}`, num, denom)
	value := float64(num) / float64(denom)
	if !positive {
		eqn = "-" + eqn
		value = -value
	}

	problem := tex.PromptAndEquation(
		"\\begin{center}\nFind the decimal form for the rational \\\\\n"+
			"number. State whether it repeats or terminates.\n\\end{center}"+
			tex.Color(".", "white"),
		tex.ScaleEquation("$"+eqn+"$", "2"),
		"2em",
	)

	kind := "repeats"
	if terminates {
		kind = "terminates"
	}
	answer := strconv.FormatFloat(value, 'f', -1, 64) + ", " + kind
	return centredCard(env, problem, answer, task.DefaultImports)
}
