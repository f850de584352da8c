package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references met while parsing, such
// as a stream /Length stored in its own object.
type ReferenceResolver func(ref IndirectRef) (Object, error)

// Parser builds PDF objects from a Lexer
type Parser struct {
	lex      *Lexer
	resolver ReferenceResolver
}

// NewParser creates a parser positioned at the start of data
func NewParser(data []byte) *Parser {
	return &Parser{lex: NewLexer(data)}
}

// SetReferenceResolver sets the resolver used for indirect stream lengths
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// Seek moves the parser to an absolute offset
func (p *Parser) Seek(offset int64) error {
	return p.lex.Seek(offset)
}

// Lexer returns the underlying lexer
func (p *Parser) Lexer() *Lexer {
	return p.lex
}

// ParseObject parses the next direct object or indirect reference
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

// ParseToken parses the object that starts with tok, a token already read
// from the parser's lexer.
func (p *Parser) ParseToken(tok Token) (Object, error) {
	return p.parseFrom(tok)
}

func (p *Parser) parseFrom(tok Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.ErrUnexpectedEOF
	case TokenInteger:
		return p.parseIntOrRef(tok)
	case TokenReal:
		v, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(v), nil
	case TokenString, TokenHexString:
		return String(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	case TokenKeyword:
		switch string(tok.Value) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %q at offset %d", tok.Value, tok.Pos)
}

// parseIntOrRef looks ahead for "G R" after an integer and rewinds when the
// integer stands alone.
func (p *Parser) parseIntOrRef(tok Token) (Object, error) {
	n, err := tok.Int()
	if err != nil {
		return nil, err
	}
	mark := p.lex.Pos()
	gen, err := p.lex.NextToken()
	if err == nil && gen.Type == TokenInteger {
		r, err := p.lex.NextToken()
		if err == nil && r.Is("R") {
			g, err := gen.Int()
			if err != nil {
				return nil, err
			}
			return IndirectRef{Number: int(n), Generation: int(g)}, nil
		}
	}
	p.lex.pos = int(mark)
	return Int(n), nil
}

func (p *Parser) parseArray() (Object, error) {
	arr := Array{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenArrayEnd {
			return arr, nil
		}
		obj, err := p.parseFrom(tok)
		if err != nil {
			return nil, fmt.Errorf("failed to parse array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	dict := Dict{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenDictEnd {
			return dict, nil
		}
		if tok.Type != TokenName {
			return nil, fmt.Errorf("expected name key at offset %d, got %q", tok.Pos, tok.Value)
		}
		val, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("failed to parse value of /%s: %w", tok.Value, err)
		}
		// A null value is equivalent to an absent entry.
		if _, isNull := val.(Null); !isNull {
			dict[string(tok.Value)] = val
		}
	}
}

// ParseIndirectObject parses "N G obj ... endobj", including streams
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	var nums [2]int64
	for i := range nums {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if nums[i], err = tok.Int(); err != nil {
			return nil, fmt.Errorf("invalid object header: %w", err)
		}
	}
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if !tok.Is("obj") {
		return nil, fmt.Errorf("expected 'obj' at offset %d, got %q", tok.Pos, tok.Value)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", nums[0], err)
	}

	mark := p.lex.Pos()
	tok, err = p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d: stream keyword after %s", nums[0], obj.Type())
		}
		if obj, err = p.parseStream(dict); err != nil {
			return nil, fmt.Errorf("object %d: %w", nums[0], err)
		}
	} else if !tok.Is("endobj") {
		// Tolerate a missing endobj; the next object starts here.
		p.lex.pos = int(mark)
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: int(nums[0]), Generation: int(nums[1])},
		Object: obj,
	}, nil
}

var endstream = []byte("endstream")

// parseStream reads the stream body after the stream keyword. A missing or
// wrong /Length falls back to scanning for endstream.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, err
	}
	start := p.lex.Pos()

	length := int64(-1)
	switch v := dict.Get("Length").(type) {
	case Int:
		length = int64(v)
	case IndirectRef:
		if p.resolver != nil {
			if obj, err := p.resolver(v); err == nil {
				if n, ok := obj.(Int); ok {
					length = int64(n)
				}
			}
		}
	}

	if length >= 0 && p.lengthFits(start, length) {
		data, _ := p.lex.ReadBytes(int(length))
		p.expect("endstream")
		p.expect("endobj")
		return &Stream{Dict: dict, Data: data}, nil
	}

	end := p.lex.IndexFrom(endstream)
	if end < 0 {
		return nil, fmt.Errorf("stream at offset %d has no endstream", start)
	}
	data, _ := p.lex.ReadBytes(int(end - start))
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	p.expect("endstream")
	p.expect("endobj")
	return &Stream{Dict: dict, Data: data}, nil
}

// lengthFits reports whether endstream follows start+length, allowing the
// optional end-of-line before it.
func (p *Parser) lengthFits(start, length int64) bool {
	end := start + length
	if end > int64(len(p.lex.data)) {
		return false
	}
	rest := bytes.TrimLeft(p.lex.data[end:min(end+16, int64(len(p.lex.data)))], "\r\n \t")
	return bytes.HasPrefix(rest, endstream)
}

// expect consumes kw when it is the next token and leaves the position
// untouched otherwise.
func (p *Parser) expect(kw string) bool {
	mark := p.lex.pos
	tok, err := p.lex.NextToken()
	if err == nil && tok.Is(kw) {
		return true
	}
	p.lex.pos = mark
	return false
}
