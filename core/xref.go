package core

import (
	"bytes"
	"fmt"
	"strconv"
)

// XRefEntryType is the kind of a cross-reference entry
type XRefEntryType int

const (
	XRefEntryFree XRefEntryType = iota
	XRefEntryUncompressed
	XRefEntryCompressed
)

// XRefEntry locates one object. For compressed entries Offset holds the
// object stream number and Generation the index inside that stream.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
	InUse      bool
}

// XRefTable maps object numbers to their entries
type XRefTable struct {
	Entries  map[int]*XRefEntry
	Trailer  Dict
	IsStream bool // read from an xref stream rather than a classic table
}

// NewXRefTable creates an empty table
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]*XRefEntry), Trailer: Dict{}}
}

// Get returns the entry for an object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	e, ok := x.Entries[objNum]
	return e, ok
}

// Set stores the entry for an object number
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser reads cross-reference data from a whole PDF file
type XRefParser struct {
	data   []byte
	parser *Parser
}

// NewXRefParser creates a parser over the file contents
func NewXRefParser(data []byte) *XRefParser {
	return &XRefParser{data: data, parser: NewParser(data)}
}

// Parser returns the object parser sharing the file data, so callers can
// install a reference resolver for xref stream lengths.
func (x *XRefParser) Parser() *Parser {
	return x.parser
}

// FindXRef returns the offset named by the last startxref keyword
func (x *XRefParser) FindXRef() (int64, error) {
	i := bytes.LastIndex(x.data, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	fields := bytes.Fields(x.data[i+len("startxref"):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref has no offset")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset %q: %w", fields[0], err)
	}
	if offset < 0 || offset >= int64(len(x.data)) {
		return 0, fmt.Errorf("startxref offset %d outside file of %d bytes", offset, len(x.data))
	}
	return offset, nil
}

// ParseXRef parses the table or stream at offset
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if err := x.parser.Seek(offset); err != nil {
		return nil, err
	}
	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}
	if isStream {
		return x.parseXRefStream()
	}
	return x.parseXRefTable()
}

// ParseAll reads the xref chain starting at startxref, following /Prev and
// the /XRefStm of hybrid files, and merges it newest first.
func (x *XRefParser) ParseAll() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	var tables []*XRefTable
	seen := make(map[int64]bool)
	for {
		if seen[offset] {
			return nil, fmt.Errorf("xref chain loops at offset %d", offset)
		}
		seen[offset] = true

		table, err := x.ParseXRef(offset)
		if err != nil {
			return nil, fmt.Errorf("failed to parse xref at offset %d: %w", offset, err)
		}
		if stm, ok := table.Trailer.GetInt("XRefStm"); ok && !table.IsStream {
			hidden, err := x.ParseXRef(int64(stm))
			if err != nil {
				return nil, fmt.Errorf("failed to parse XRefStm at offset %d: %w", stm, err)
			}
			for num, e := range hidden.Entries {
				if cur, ok := table.Entries[num]; !ok || cur.Type == XRefEntryFree {
					table.Entries[num] = e
				}
			}
		}
		tables = append(tables, table)

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}
	return MergeXRefTables(tables...), nil
}

// MergeXRefTables merges tables given newest first. Entries and trailer
// keys of newer tables win.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	out := NewXRefTable()
	for _, t := range tables {
		for num, e := range t.Entries {
			if _, ok := out.Entries[num]; !ok {
				out.Entries[num] = e
			}
		}
		for k, v := range t.Trailer {
			if k == "Prev" || k == "XRefStm" {
				continue
			}
			if _, ok := out.Trailer[k]; !ok {
				out.Trailer[k] = v
			}
		}
		out.IsStream = out.IsStream || t.IsStream
	}
	return out
}

// isXRefStream peeks at the current position: the xref keyword starts a
// classic table, an object header starts an xref stream.
func (x *XRefParser) isXRefStream() (bool, error) {
	lex := x.parser.Lexer()
	mark := lex.Pos()
	defer lex.Seek(mark)

	tok, err := lex.NextToken()
	if err != nil {
		return false, err
	}
	switch {
	case tok.Is("xref"):
		return false, nil
	case tok.Type == TokenInteger:
		return true, nil
	default:
		return false, fmt.Errorf("expected xref table or stream at offset %d, got %q", tok.Pos, tok.Value)
	}
}

func (x *XRefParser) parseXRefTable() (*XRefTable, error) {
	lex := x.parser.Lexer()
	if tok, err := lex.NextToken(); err != nil || !tok.Is("xref") {
		return nil, fmt.Errorf("expected xref keyword")
	}

	table := NewXRefTable()
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Is("trailer") {
			obj, err := x.parser.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("failed to parse trailer: %w", err)
			}
			dict, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is %s, not a dictionary", obj.Type())
			}
			table.Trailer = dict
			return table, nil
		}

		start, err := tok.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid subsection header: %w", err)
		}
		countTok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		count, err := countTok.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid subsection count: %w", err)
		}

		for i := int64(0); i < count; i++ {
			entry, err := x.parseTableEntry()
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", start+i, err)
			}
			table.Entries[int(start+i)] = entry
		}
	}
}

// parseTableEntry reads "oooooooooo ggggg n|f"
func (x *XRefParser) parseTableEntry() (*XRefEntry, error) {
	lex := x.parser.Lexer()
	var nums [2]int64
	for i := range nums {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if nums[i], err = tok.Int(); err != nil {
			return nil, err
		}
	}
	tok, err := lex.NextToken()
	if err != nil {
		return nil, err
	}
	entry := &XRefEntry{Offset: nums[0], Generation: int(nums[1])}
	switch {
	case tok.Is("n"):
		entry.Type, entry.InUse = XRefEntryUncompressed, true
	case tok.Is("f"):
		entry.Type = XRefEntryFree
	default:
		return nil, fmt.Errorf("invalid entry type %q", tok.Value)
	}
	return entry, nil
}

func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	obj, err := x.parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream object: %w", err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref object %d is not a stream", obj.Ref.Number)
	}
	dict := stream.Dict

	if t, ok := dict.GetName("Type"); !ok || t != "XRef" {
		return nil, fmt.Errorf("xref stream has /Type %v, want /XRef", dict.Get("Type"))
	}
	size, ok := dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /Size")
	}
	wArr, ok := dict.GetArray("W")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	if len(wArr) != 3 {
		return nil, fmt.Errorf("xref stream /W has %d fields, want 3", len(wArr))
	}
	w := make([]int, 3)
	rowLen := 0
	for i, v := range wArr {
		n, ok := v.(Int)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("invalid /W field %d: %v", i, v)
		}
		w[i] = int(n)
		rowLen += int(n)
	}
	if rowLen == 0 {
		return nil, fmt.Errorf("xref stream /W is all zero")
	}

	index := []int{0, int(size)}
	if idx, ok := dict.GetArray("Index"); ok {
		if len(idx)%2 != 0 {
			return nil, fmt.Errorf("xref stream /Index has odd length %d", len(idx))
		}
		index = index[:0]
		for _, v := range idx {
			n, ok := v.(Int)
			if !ok {
				return nil, fmt.Errorf("invalid /Index value: %v", v)
			}
			index = append(index, int(n))
		}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.Trailer = dict
	table.IsStream = true
	for i := 0; i < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			entry, n, err := parseXRefStreamEntry(data, w)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", start+j, err)
			}
			data = data[n:]
			table.Entries[start+j] = entry
		}
	}
	return table, nil
}

// parseXRefStreamEntry decodes one row of an xref stream and returns the
// number of bytes consumed. A zero-width type field means type 1.
func parseXRefStreamEntry(data []byte, w []int) (*XRefEntry, int, error) {
	n := w[0] + w[1] + w[2]
	if len(data) < n {
		return nil, 0, fmt.Errorf("need %d bytes, have %d", n, len(data))
	}
	typ := int64(1)
	if w[0] > 0 {
		typ = readBigEndianInt(data, w[0])
	}
	f2 := readBigEndianInt(data[w[0]:], w[1])
	f3 := readBigEndianInt(data[w[0]+w[1]:], w[2])

	switch typ {
	case 0:
		return &XRefEntry{Type: XRefEntryFree, Offset: f2, Generation: int(f3)}, n, nil
	case 1:
		return &XRefEntry{Type: XRefEntryUncompressed, Offset: f2, Generation: int(f3), InUse: true}, n, nil
	case 2:
		return &XRefEntry{Type: XRefEntryCompressed, Offset: f2, Generation: int(f3), InUse: true}, n, nil
	default:
		// Unknown types are references to the null object.
		return &XRefEntry{Type: XRefEntryFree}, n, nil
	}
}

func readBigEndianInt(data []byte, width int) int64 {
	var v int64
	for i := 0; i < width && i < len(data); i++ {
		v = v<<8 | int64(data[i])
	}
	return v
}
