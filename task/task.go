// Package task defines the contract between the pipeline and card factories.
//
// A [Factory] produces one [model.Card] per call. Factories receive an [Env]
// carrying the random source, the scratch directory for any files they
// write, and an optional [Uploader] for hosting images.
package task

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/tsawler/taskcards/model"
)

// Category groups tasks by course.
type Category int

const (
	AlgebraI Category = iota + 1
	Geometry
	AlgebraII
)

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case AlgebraI:
		return "algebra1"
	case Geometry:
		return "geometry"
	case AlgebraII:
		return "algebra2"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory parses the names produced by Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "algebra1", "algebrai":
		return AlgebraI, nil
	case "geometry":
		return Geometry, nil
	case "algebra2", "algebraii":
		return AlgebraII, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// Style selects how cards are marked up.
type Style int

const (
	// Minimal is the only supported style: prompt, equation, and a QR code
	// answer.
	Minimal Style = iota + 1
)

// DefaultImports are the imports of a task that declares none.
var DefaultImports = []string{"amsmath"}

// Uploader hosts an image and returns its permanent URL.
type Uploader interface {
	Upload(ctx context.Context, image []byte) (string, error)
}

// Env is the environment a factory generates in.
type Env struct {
	Rand       *rand.Rand
	ScratchDir string   // directory shared with the typesetter
	Uploader   Uploader // nil when no hosting is configured
	Style      Style
}

// Factory produces cards.
type Factory interface {
	Generate(ctx context.Context, env Env) (model.Card, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, env Env) (model.Card, error)

// Generate calls f(ctx, env).
func (f FactoryFunc) Generate(ctx context.Context, env Env) (model.Card, error) {
	return f(ctx, env)
}

// Static returns a factory that always yields card.
func Static(card model.Card) Factory {
	return FactoryFunc(func(context.Context, Env) (model.Card, error) {
		return card, nil
	})
}
