// Package model provides the in-memory representation of a task card
// worksheet before it is typeset.
//
// # Cards
//
// A [Card] is one problem and answer unit: opaque markup plus the packages
// it imports and the preamble snippets it needs. Cards are produced by card
// factories and are immutable once created:
//
//	card := model.NewCard(markup, []string{"amsmath"}, nil)
//
// # Pages
//
// A [Page] holds exactly [CardsPerPage] cards in a fixed 2x2 grid. The card
// index maps to a [Quadrant]: 0 top-left, 1 top-right, 2 bottom-left,
// 3 bottom-right.
//
// # Documents
//
// A [Document] is an ordered sequence of pages that also owns the
// requirements aggregated over every card it contains:
//
//	doc := model.NewDocument()
//	doc.AddPage(page)
//	doc.Imports()   // sorted union of card imports
//	doc.Preambles() // merged preambles, last registration wins per key
//
// Preamble keys keep the position of their first registration so the
// typeset preamble is deterministic, while the value is always the most
// recent one.
package model
