package model

import "sort"

// Document represents an assembled worksheet: ordered pages plus the
// requirements aggregated across all of their cards.
type Document struct {
	Pages []Page

	imports      map[string]struct{}
	preambleKeys []string
	preambles    map[string]string
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Pages:     make([]Page, 0),
		imports:   make(map[string]struct{}),
		preambles: make(map[string]string),
	}
}

// AddPage appends a page, numbers it, and folds the requirements of its
// cards into the document in card order. A later card's preamble replaces
// an earlier one with the same key.
func (d *Document) AddPage(page Page) {
	if d.imports == nil {
		d.imports = make(map[string]struct{})
	}
	if d.preambles == nil {
		d.preambles = make(map[string]string)
	}

	page.Number = len(d.Pages) + 1
	d.Pages = append(d.Pages, page)

	for _, card := range page.Cards {
		for _, imp := range card.imports {
			d.imports[imp] = struct{}{}
		}
		for _, p := range card.preambles {
			if _, ok := d.preambles[p.Key]; !ok {
				d.preambleKeys = append(d.preambleKeys, p.Key)
			}
			d.preambles[p.Key] = p.Markup
		}
	}
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(number int) (Page, bool) {
	if number < 1 || number > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[number-1], true
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Cards returns every card in page order, then quadrant order.
func (d *Document) Cards() []Card {
	cards := make([]Card, 0, len(d.Pages)*CardsPerPage)
	for _, p := range d.Pages {
		cards = append(cards, p.Cards[:]...)
	}
	return cards
}

// Imports returns the sorted union of all card imports.
func (d *Document) Imports() []string {
	out := make([]string, 0, len(d.imports))
	for imp := range d.imports {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// Preambles returns the merged preambles in first-registration order.
func (d *Document) Preambles() []Preamble {
	out := make([]Preamble, 0, len(d.preambleKeys))
	for _, key := range d.preambleKeys {
		out = append(out, Preamble{Key: key, Markup: d.preambles[key]})
	}
	return out
}

// Preamble returns the merged preamble for key.
func (d *Document) Preamble(key string) (string, bool) {
	markup, ok := d.preambles[key]
	return markup, ok
}
