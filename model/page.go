package model

import "fmt"

// CardsPerPage is the number of cards on every page.
const CardsPerPage = 4

// Quadrant identifies a card position in the 2x2 page grid.
type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// Quadrants lists the positions in row-major order.
var Quadrants = [CardsPerPage]Quadrant{TopLeft, TopRight, BottomLeft, BottomRight}

// String returns the string representation of the quadrant
func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
}

// Page is a single worksheet page of exactly four cards.
type Page struct {
	Number int // 1-indexed page number, set by Document.AddPage
	Cards  [CardsPerPage]Card
}

// NewPage creates a page from exactly four cards in quadrant order.
func NewPage(cards ...Card) (Page, error) {
	if len(cards) != CardsPerPage {
		return Page{}, fmt.Errorf("page needs exactly %d cards, got %d", CardsPerPage, len(cards))
	}
	var p Page
	copy(p.Cards[:], cards)
	return p, nil
}

// Card returns the card placed in quadrant q.
func (p Page) Card(q Quadrant) Card {
	return p.Cards[q]
}
