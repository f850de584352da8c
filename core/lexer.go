package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF         TokenType = iota
	TokenKeyword               // true, false, null, obj, endobj, stream, R, xref, trailer ...
	TokenInteger               // 123
	TokenReal                  // 3.14
	TokenString                // (hello)
	TokenHexString             // <48656C6C6F>
	TokenName                  // /Type
	TokenArrayStart            // [
	TokenArrayEnd              // ]
	TokenDictStart             // <<
	TokenDictEnd               // >>
)

// Token represents a lexical token. Value holds decoded bytes for strings
// and names, and the raw text for everything else.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

// Is reports whether the token is the keyword kw.
func (t Token) Is(kw string) bool {
	return t.Type == TokenKeyword && string(t.Value) == kw
}

// Int returns the token value as an integer.
func (t Token) Int() (int64, error) {
	if t.Type != TokenInteger {
		return 0, fmt.Errorf("expected integer at offset %d, got %q", t.Pos, t.Value)
	}
	return strconv.ParseInt(string(t.Value), 10, 64)
}

// Lexer tokenizes PDF syntax held in memory. Comments are skipped.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer positioned at the start of data
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current offset
func (l *Lexer) Pos() int64 {
	return int64(l.pos)
}

// Seek moves the lexer to an absolute offset
func (l *Lexer) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(l.data)) {
		return fmt.Errorf("offset %d outside data of %d bytes", offset, len(l.data))
	}
	l.pos = int(offset)
	return nil
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipSpaceAndComments()
	start := l.pos
	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF, Pos: int64(start)}, nil
	}

	tok := func(t TokenType, n int) (Token, error) {
		l.pos += n
		return Token{Type: t, Value: l.data[start:l.pos], Pos: int64(start)}, nil
	}

	switch b := l.data[l.pos]; {
	case b == '[':
		return tok(TokenArrayStart, 1)
	case b == ']':
		return tok(TokenArrayEnd, 1)
	case b == '<' && l.at(1) == '<':
		return tok(TokenDictStart, 2)
	case b == '>' && l.at(1) == '>':
		return tok(TokenDictEnd, 2)
	case b == '<':
		return l.readHexString()
	case b == '(':
		return l.readString()
	case b == '/':
		return l.readName()
	case b == '+' || b == '-' || b == '.' || isDigit(b):
		return l.readNumber()
	case isRegular(b):
		for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenKeyword, Value: l.data[start:l.pos], Pos: int64(start)}, nil
	default:
		return Token{}, fmt.Errorf("unexpected character %q at offset %d", b, l.pos)
	}
}

// ReadBytes returns the next n raw bytes
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || l.pos+n > len(l.data) {
		return nil, io.ErrUnexpectedEOF
	}
	out := l.data[l.pos : l.pos+n]
	l.pos += n
	return out, nil
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword. The PDF format requires CRLF or LF; a lone CR is accepted too.
func (l *Lexer) SkipStreamEOL() error {
	for l.pos < len(l.data) && l.data[l.pos] == ' ' {
		l.pos++
	}
	switch {
	case l.at(0) == '\r' && l.at(1) == '\n':
		l.pos += 2
	case l.at(0) == '\n' || l.at(0) == '\r':
		l.pos++
	default:
		return fmt.Errorf("missing end-of-line after stream keyword at offset %d", l.pos)
	}
	return nil
}

// IndexFrom returns the absolute offset of the next occurrence of sep, or -1.
func (l *Lexer) IndexFrom(sep []byte) int64 {
	i := bytes.Index(l.data[l.pos:], sep)
	if i < 0 {
		return -1
	}
	return int64(l.pos + i)
}

func (l *Lexer) at(off int) byte {
	if l.pos+off >= len(l.data) {
		return 0
	}
	return l.data[l.pos+off]
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case isSpace(b):
			l.pos++
		case b == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	typ := TokenInteger
	if c := l.data[l.pos]; c == '+' || c == '-' {
		l.pos++
	}
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '.' && typ == TokenInteger {
			typ = TokenReal
		} else if !isDigit(c) {
			break
		}
		l.pos++
	}
	if l.pos == start+1 && !isDigit(l.data[start]) {
		return Token{}, fmt.Errorf("malformed number at offset %d", start)
	}
	return Token{Type: typ, Value: l.data[start:l.pos], Pos: int64(start)}, nil
}

func (l *Lexer) readName() (Token, error) {
	start := l.pos
	l.pos++
	var name []byte
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		c := l.data[l.pos]
		if c == '#' && l.pos+2 < len(l.data) {
			if v, err := strconv.ParseUint(string(l.data[l.pos+1:l.pos+3]), 16, 8); err == nil {
				name = append(name, byte(v))
				l.pos += 3
				continue
			}
		}
		name = append(name, c)
		l.pos++
	}
	return Token{Type: TokenName, Value: name, Pos: int64(start)}, nil
}

func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++
	depth := 1
	var out []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: out, Pos: int64(start)}, nil
			}
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if l.at(0) == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.at(0) >= '0' && l.at(0) <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return Token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	end := bytes.IndexByte(l.data[l.pos:], '>')
	if end < 0 {
		return Token{}, fmt.Errorf("unterminated hex string at offset %d", start)
	}
	var digits []byte
	for _, c := range l.data[l.pos+1 : l.pos+end] {
		if isSpace(c) {
			continue
		}
		if !isHex(c) {
			return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", c, start)
		}
		digits = append(digits, c)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		v, _ := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		out[i] = byte(v)
	}
	l.pos += end + 1
	return Token{Type: TokenHexString, Value: out, Pos: int64(start)}, nil
}

func isSpace(b byte) bool {
	return b == 0 || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == ' '
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(b byte) bool {
	return !isSpace(b) && !isDelimiter(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
