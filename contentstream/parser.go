package contentstream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/taskcards/core"
)

// Operation is an operator with the operands that precede it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser reads operations one at a time.
type Parser struct {
	parser *core.Parser
	lex    *core.Lexer
	data   []byte
}

// NewParser creates a parser for content stream data.
func NewParser(data []byte) *Parser {
	p := core.NewParser(data)
	return &Parser{parser: p, lex: p.Lexer(), data: data}
}

// Parse returns every operation of data in order.
func Parse(data []byte) ([]Operation, error) {
	p := NewParser(data)
	var ops []Operation
	for {
		op, err := p.Next()
		if err == io.EOF {
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
}

// Next returns the next operation, or io.EOF after the last one. Operands
// left over at the end of the stream are dropped.
func (p *Parser) Next() (Operation, error) {
	var operands []core.Object
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return Operation{}, err
		}
		switch {
		case tok.Type == core.TokenEOF:
			return Operation{}, io.EOF
		case tok.Is("BI"):
			return p.inlineImage()
		case tok.Type == core.TokenKeyword && !isLiteral(tok):
			return Operation{Operator: string(tok.Value), Operands: operands}, nil
		}

		obj, err := p.parser.ParseToken(tok)
		if err != nil {
			return Operation{}, fmt.Errorf("operand at offset %d: %w", tok.Pos, err)
		}
		operands = append(operands, obj)
	}
}

// inlineImage reads the image dictionary up to ID and skips the samples
// that follow it up to EI.
func (p *Parser) inlineImage() (Operation, error) {
	dict := core.Dict{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return Operation{}, err
		}
		if tok.Is("ID") {
			break
		}
		if tok.Type != core.TokenName {
			return Operation{}, fmt.Errorf("inline image: expected key at offset %d, got %q", tok.Pos, tok.Value)
		}
		val, err := p.parser.ParseObject()
		if err != nil {
			return Operation{}, fmt.Errorf("inline image /%s: %w", tok.Value, err)
		}
		dict[string(tok.Value)] = val
	}

	end := p.endOfInlineData(p.lex.Pos())
	if end < 0 {
		return Operation{}, fmt.Errorf("inline image: missing EI")
	}
	if err := p.lex.Seek(end + 2); err != nil {
		return Operation{}, err
	}
	return Operation{Operator: "BI", Operands: []core.Object{dict}}, nil
}

// endOfInlineData finds an EI keyword that stands on its own after from.
func (p *Parser) endOfInlineData(from int64) int64 {
	for off := int(from); off < len(p.data); {
		i := bytes.Index(p.data[off:], []byte("EI"))
		if i < 0 {
			return -1
		}
		at := off + i
		before := at == 0 || isSpace(p.data[at-1])
		after := at+2 == len(p.data) || isSpace(p.data[at+2])
		if before && after {
			return int64(at)
		}
		off = at + 2
	}
	return -1
}

// XObjects returns the names painted with Do, in first-use order.
func XObjects(ops []Operation) []string {
	var names []string
	seen := make(map[string]bool)
	for _, op := range ops {
		if op.Operator != "Do" || len(op.Operands) != 1 {
			continue
		}
		name, ok := op.Operands[0].(core.Name)
		if !ok || seen[string(name)] {
			continue
		}
		seen[string(name)] = true
		names = append(names, string(name))
	}
	return names
}

func isLiteral(tok core.Token) bool {
	return tok.Is("true") || tok.Is("false") || tok.Is("null")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}
