package tasks

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/plot"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
	"github.com/tsawler/taskcards/tex"
)

// LinearPlot asks for the graph of y = mx + b on -3 < x < 3. The answer QR
// code links to the uploaded graph, so the environment needs an uploader.
func LinearPlot(ctx context.Context, env task.Env) (model.Card, error) {
	if env.Uploader == nil {
		return model.Card{}, taskerr.Configurationf("tasks.linear_plot", "no uploader configured")
	}
	r := rng(env)
	m := between(r, -2, 2)
	b := between(r, -2, 2)

	g := plot.Graph{XMax: 5, YMin: -5, YMax: 5}
	img, err := g.PNG([]float64{-3, 3}, []float64{float64(-3*m + b), float64(3*m + b)})
	if err != nil {
		return model.Card{}, fmt.Errorf("plotting y=%dx+%d: %w", m, b, err)
	}
	url, err := env.Uploader.Upload(ctx, img)
	if err != nil {
		return model.Card{}, err
	}

	problem := tex.PromptAndEquation(
		tex.ScaleEquation("Plot the function on $-3 < x < 3$", "1.25")+tex.Color(".", "white"),
		tex.ScaleEquation(fmt.Sprintf("$y = %s$", linear(m, b)), "2"),
		"2em",
	)
	return centredCard(env, problem, url, task.DefaultImports)
}

// linear formats mx + b the way it is written by hand.
func linear(m, b int) string {
	var sb strings.Builder
	switch m {
	case 0:
	case 1:
		sb.WriteString("x")
	case -1:
		sb.WriteString("-x")
	default:
		sb.WriteString(strconv.Itoa(m) + "x")
	}
	switch {
	case b > 0 && sb.Len() > 0:
		sb.WriteString(" + " + strconv.Itoa(b))
	case b < 0 && sb.Len() > 0:
		sb.WriteString(" - " + strconv.Itoa(-b))
	case b != 0 || sb.Len() == 0:
		sb.WriteString(strconv.Itoa(b))
	}
	return sb.String()
}

type parabolaFeature int

const (
	yIntercept parabolaFeature = iota
	zeros
	vertex
	symmetry
	leadingSign
)

var parabolaQuestions = [...]string{
	yIntercept:  "What is the y-intercept?",
	zeros:       "What are the zeros?",
	vertex:      "What is the vertex?",
	symmetry:    "What is the axis of symmetry?",
	leadingSign: "Is the leading coefficient positive or negative?",
}

// ParabolaFeatures shows a parabola and asks for one of its features.
func ParabolaFeatures(_ context.Context, env task.Env) (model.Card, error) {
	r := rng(env)
	positive := r.IntN(2) == 0
	steep := r.IntN(2) == 0
	feature := parabolaFeature(r.IntN(len(parabolaQuestions)))

	a := float64(between(r, 1, 3))
	if !positive {
		a = -a
	}
	if !steep {
		a = 1 / a
	}

	var (
		f      func(float64) float64
		answer string
	)
	switch feature {
	case vertex, symmetry, leadingSign:
		h := between(r, -4, 4)
		k := between(r, 0, 4)
		if !positive {
			k = -k
		}
		f = func(x float64) float64 { d := x - float64(h); return a*d*d + float64(k) }
		switch feature {
		case vertex:
			answer = fmt.Sprintf("The vertex is at (%d, %d).", h, k)
		case symmetry:
			answer = fmt.Sprintf("The axis of symmetry is x = %d.", h)
		default:
			if positive {
				answer = "The leading coefficient is positive."
			} else {
				answer = "The leading coefficient is negative."
			}
		}
	case zeros:
		p := between(r, -4, 4)
		q := between(r, -4, 4)
		f = func(x float64) float64 { return a * (x - float64(p)) * (x - float64(q)) }
		answer = fmt.Sprintf("The zeros are %d and %d.", p, q)
	default:
		c := between(r, 0, 5)
		b := between(r, -5, 5)
		if !positive {
			c = -c
		}
		f = func(x float64) float64 { return a*x*x + float64(b)*x + float64(c) }
		answer = fmt.Sprintf("The y-intercept is %d.", c)
	}

	path, err := writeGraph(env, f)
	if err != nil {
		return model.Card{}, err
	}

	problem := tex.PromptAndEquation(
		`\Large{\vspace{0.8em}Look at this graph of a quadratic function and answer the question. }`,
		tex.FigureLeftOfText(path, parabolaQuestions[feature]),
		"0.2cm",
	)
	body, err := tex.TaskCard(problem, answer, "-1.5cm", style(env))
	if err != nil {
		return model.Card{}, err
	}
	return model.NewCard(body, graphImports, nil), nil
}

// ExpoQualitative shows the graph of a*b^x and asks which statements about
// it hold.
func ExpoQualitative(_ context.Context, env task.Env) (model.Card, error) {
	r := rng(env)
	positive := r.IntN(2) == 0
	growsFast := r.IntN(2) == 0

	a := float64(between(r, 1, 5))
	if !positive {
		a = -a
	}
	b := float64(between(r, 2, 5))
	if !growsFast {
		b = 1 / b
	}

	path, err := writeGraph(env, func(x float64) float64 { return a * math.Pow(b, x) })
	if err != nil {
		return model.Card{}, err
	}

	problem := tex.PromptAndEquation(
		`\Large{\vspace{0.8em}Look at the graph of an exponential function that `+
			`has the form $f(x)=ab^x$  where $b>0$. Which of the `+
			`following statements about this function must be true? `+
			`Select all that apply.}`,
		tex.FigureLeftOfText(path, tex.Enumerate(
			`$a$ is positive`,
			`$0 < b < 1$`,
			`the function models growth`,
			`the function models decay`,
			`the range is $y > 0$`,
		)),
		"-0.4cm",
	)

	var correct []string
	if positive {
		correct = append(correct, "A")
	}
	if !growsFast {
		correct = append(correct, "B")
	}
	if positive && growsFast {
		correct = append(correct, "C")
	}
	if positive && !growsFast {
		correct = append(correct, "D")
	}
	if positive {
		correct = append(correct, "E")
	}
	if len(correct) == 0 {
		correct = append(correct, "None")
	}

	body, err := tex.TaskCard(problem, strings.Join(correct, ", "), "-1.35cm", style(env))
	if err != nil {
		return model.Card{}, err
	}
	return model.NewCard(body, graphImports, nil), nil
}

// writeGraph plots f over [-5, 5] into a uniquely named PNG in the scratch
// directory and returns its path.
func writeGraph(env task.Env, f func(float64) float64) (string, error) {
	if env.ScratchDir == "" {
		return "", taskerr.Configurationf("tasks.graph", "no scratch directory for graph images")
	}
	xs := plot.Linspace(-5, 5, 100)
	g := plot.Graph{XMax: 6, YMin: -6, YMax: 6}
	path := filepath.Join(env.ScratchDir, uuid.NewString()+".png")
	if err := g.WriteFile(path, xs, plot.Sample(f, xs)); err != nil {
		return "", fmt.Errorf("writing graph: %w", err)
	}
	return path, nil
}
