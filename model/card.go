package model

import "sort"

// Preamble is a keyed preamble snippet. The key identifies the snippet so
// cards that need the same setup share a single copy.
type Preamble struct {
	Key    string
	Markup string
}

// Card is a renderable content unit with its typesetting requirements.
// The zero value is an empty card with no requirements.
type Card struct {
	markup    string
	imports   []string
	preambles []Preamble
}

// NewCard creates a card. Imports are de-duplicated and sorted; preambles
// are stored sorted by key. The inputs are copied, so later changes to them
// do not affect the card.
func NewCard(markup string, imports []string, preambles map[string]string) Card {
	c := Card{markup: markup}

	if len(imports) > 0 {
		seen := make(map[string]struct{}, len(imports))
		for _, imp := range imports {
			if imp == "" {
				continue
			}
			if _, ok := seen[imp]; ok {
				continue
			}
			seen[imp] = struct{}{}
			c.imports = append(c.imports, imp)
		}
		sort.Strings(c.imports)
	}

	if len(preambles) > 0 {
		c.preambles = make([]Preamble, 0, len(preambles))
		for key, markup := range preambles {
			c.preambles = append(c.preambles, Preamble{Key: key, Markup: markup})
		}
		sort.Slice(c.preambles, func(i, j int) bool {
			return c.preambles[i].Key < c.preambles[j].Key
		})
	}

	return c
}

// Markup returns the card content.
func (c Card) Markup() string {
	return c.markup
}

// Imports returns the sorted set of packages the card requires.
func (c Card) Imports() []string {
	if len(c.imports) == 0 {
		return nil
	}
	out := make([]string, len(c.imports))
	copy(out, c.imports)
	return out
}

// Preambles returns the card preambles sorted by key.
func (c Card) Preambles() []Preamble {
	if len(c.preambles) == 0 {
		return nil
	}
	out := make([]Preamble, len(c.preambles))
	copy(out, c.preambles)
	return out
}

// HasImport reports whether the card requires the named package.
func (c Card) HasImport(name string) bool {
	i := sort.SearchStrings(c.imports, name)
	return i < len(c.imports) && c.imports[i] == name
}
