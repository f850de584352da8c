// Package assemble builds documents of randomly sampled cards.
package assemble

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
)

// Assembler samples factories into pages.
type Assembler struct {
	Factories []task.Factory
	Env       task.Env
	Logger    *zap.Logger
}

// Assemble is shorthand for an Assembler with no logger.
func Assemble(ctx context.Context, factories []task.Factory, pageCount int, env task.Env) (*model.Document, error) {
	a := &Assembler{Factories: factories, Env: env}
	return a.Assemble(ctx, pageCount)
}

// Assemble builds pageCount pages. Every card is produced by a factory drawn
// uniformly at random, with replacement, from a.Factories. Cards are added
// to the document in generation order, so a later card's preamble replaces
// an earlier one with the same key.
func (a *Assembler) Assemble(ctx context.Context, pageCount int) (*model.Document, error) {
	if pageCount < 0 {
		return nil, taskerr.Configurationf("assemble", "page count must not be negative, got %d", pageCount)
	}
	if len(a.Factories) == 0 && pageCount > 0 {
		return nil, taskerr.Configurationf("assemble", "no task factories to draw %d pages from", pageCount)
	}

	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env := a.Env
	if env.Rand == nil {
		env.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if env.Style == 0 {
		env.Style = task.Minimal
	}

	doc := model.NewDocument()
	for p := 1; p <= pageCount; p++ {
		var cards [model.CardsPerPage]model.Card
		for i := range cards {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			f := a.Factories[env.Rand.IntN(len(a.Factories))]
			card, err := f.Generate(ctx, env)
			if err != nil {
				return nil, fmt.Errorf("page %d, %s card: %w", p, model.Quadrants[i], err)
			}
			cards[i] = card
		}
		page, err := model.NewPage(cards[:]...)
		if err != nil {
			return nil, err
		}
		doc.AddPage(page)
		logger.Debug("assembled page", zap.Int("page", p))
	}

	logger.Info("assembled document",
		zap.Int("pages", doc.PageCount()),
		zap.Strings("imports", doc.Imports()))
	return doc, nil
}
