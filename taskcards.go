// Package taskcards generates printable worksheets of bordered task cards.
//
// A run draws cards at random from the selected tasks, four to a page,
// typesets the pages into out.pdf, then cuts every page into its four
// cards, frames each card with the border template and merges the framed
// pages into bordered.pdf. Both files are written to the output directory,
// which is deleted and recreated at the start of every run.
//
// Basic usage:
//
//	reg, err := tasks.Registry()
//	if err != nil {
//	    // handle error
//	}
//	res, err := taskcards.New(reg).
//	    Tasks("PerfectSquaresTask", "algebra.RationalToDecimalTask").
//	    Pages(3).
//	    Generate(ctx)
//	if err != nil {
//	    os.Exit(taskerr.KindOf(err).ExitCode())
//	}
//	fmt.Println(res.BorderedPath)
//
// Every configuration method returns a new Generator, so a partially
// configured Generator can be shared and extended safely.
package taskcards

import (
	"github.com/tsawler/taskcards/model"
	"github.com/tsawler/taskcards/ocr"
)

// Names of the files written to the output directory.
const (
	RenderedName = "out"          // out.tex and out.pdf
	BorderedName = "bordered.pdf" // the final document
)

// Result describes a finished run.
type Result struct {
	Document     *model.Document
	RenderedPath string // typeset document without borders
	BorderedPath string // final bordered document

	// BlankCards lists cards in which OCR found no text. It is only
	// filled when the run was proofed.
	BlankCards []ocr.CardRef
}
