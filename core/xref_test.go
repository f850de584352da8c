package core

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/tsawler/taskcards/internal/filters"
)

// buildPDF lays out objects and returns the file with a classic xref table
// plus the offset of every object.
func buildPDF(objs map[int]string, trailer string) ([]byte, map[int]int) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make(map[int]int)
	last := 0
	for n := 1; n <= len(objs); n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, objs[n])
		last = n
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", last+1)
	for n := 1; n <= last; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes(), offsets
}

// TestParseClassicXRef tests table parsing and startxref discovery
func TestParseClassicXRef(t *testing.T) {
	data, offsets := buildPDF(map[int]string{
		1: "<< /Type /Catalog /Pages 2 0 R >>",
		2: "<< /Type /Pages /Kids [] /Count 0 >>",
	}, "<< /Size 3 /Root 1 0 R >>")

	table, err := NewXRefParser(data).ParseAll()
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if table.IsStream {
		t.Error("classic table reported as stream")
	}
	for n, off := range offsets {
		e, ok := table.Get(n)
		if !ok || e.Type != XRefEntryUncompressed || e.Offset != int64(off) || !e.InUse {
			t.Errorf("object %d: entry %+v, want offset %d", n, e, off)
		}
	}
	if e, _ := table.Get(0); e.InUse || e.Type != XRefEntryFree {
		t.Errorf("object 0 should be free, got %+v", e)
	}
	if ref, ok := table.Trailer.GetIndirectRef("Root"); !ok || ref.Number != 1 {
		t.Errorf("trailer /Root = %v", table.Trailer.Get("Root"))
	}
}

// TestFindXRefErrors tests missing and invalid startxref
func TestFindXRefErrors(t *testing.T) {
	for _, input := range []string{"%PDF-1.4\n", "startxref\n", "startxref\nabc\n", "startxref\n9999\n"} {
		if _, err := NewXRefParser([]byte(input)).FindXRef(); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

// TestParseAllFollowsPrev tests incremental updates
func TestParseAllFollowsPrev(t *testing.T) {
	base, _ := buildPDF(map[int]string{
		1: "<< /Type /Catalog /Pages 2 0 R >>",
		2: "<< /Type /Pages /Kids [] /Count 0 >>",
	}, "<< /Size 3 /Root 1 0 R /Info 9 0 R >>")
	firstXRef, _ := NewXRefParser(base).FindXRef()

	var buf bytes.Buffer
	buf.Write(base)
	update := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 /Updated true >>\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n2 1\n%010d 00000 n \ntrailer\n<< /Size 3 /Root 1 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", update, firstXRef, xref)

	table, err := NewXRefParser(buf.Bytes()).ParseAll()
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if e, _ := table.Get(2); e.Offset != int64(update) {
		t.Errorf("object 2 offset = %d, want updated %d", e.Offset, update)
	}
	if e, ok := table.Get(1); !ok || !e.InUse {
		t.Error("object 1 from the older section is missing")
	}
	if table.Trailer.Has("Prev") {
		t.Error("merged trailer should not carry /Prev")
	}
	if !table.Trailer.Has("Info") {
		t.Error("merged trailer lost /Info from the older section")
	}
}

// TestParseAllDetectsLoop tests a /Prev chain pointing at itself
func TestParseAllDetectsLoop(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", xref, xref)
	if _, err := NewXRefParser(buf.Bytes()).ParseAll(); err == nil {
		t.Error("expected error for looping xref chain")
	}
}

// xrefStreamFile builds a file whose only cross-reference data is a
// compressed, predicted xref stream.
func xrefStreamFile(t *testing.T, dict string, rows [][]byte) []byte {
	t.Helper()
	var raw []byte
	for _, row := range rows {
		raw = append(raw, 2) // PNG up filter
		raw = append(raw, row...)
	}
	// Undo the up filter so the decoder reproduces rows.
	width := len(rows[0])
	encoded := make([]byte, len(raw))
	copy(encoded, raw)
	for r := len(rows) - 1; r > 0; r-- {
		for i := 1; i <= width; i++ {
			encoded[r*(width+1)+i] -= raw[(r-1)*(width+1)+i]
		}
	}
	z, err := filters.FlateEncode(encoded)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")
	off := buf.Len()
	fmt.Fprintf(&buf, "5 0 obj\n<< %s /Filter /FlateDecode /DecodeParms << /Predictor 12 /Columns %d >> /Length %d >>\nstream\n", dict, width, len(z))
	buf.Write(z)
	fmt.Fprintf(&buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", off)
	return buf.Bytes()
}

// TestParseXRefStream tests W, Index and all three entry types
func TestParseXRefStream(t *testing.T) {
	rows := [][]byte{
		{0, 0, 0, 255},
		{1, 0, 15, 0},
		{2, 0, 7, 3},
	}
	data := xrefStreamFile(t, "/Type /XRef /Size 12 /W [1 2 1] /Index [0 1 10 2] /Root 1 0 R", rows)

	table, err := NewXRefParser(data).ParseAll()
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if !table.IsStream {
		t.Error("expected IsStream")
	}
	if e, _ := table.Get(0); e.Type != XRefEntryFree {
		t.Errorf("object 0: %+v", e)
	}
	if e, _ := table.Get(10); e.Type != XRefEntryUncompressed || e.Offset != 15 {
		t.Errorf("object 10: %+v", e)
	}
	if e, _ := table.Get(11); e.Type != XRefEntryCompressed || e.Offset != 7 || e.Generation != 3 || !e.InUse {
		t.Errorf("object 11: %+v", e)
	}
	if _, ok := table.Trailer.GetIndirectRef("Root"); !ok {
		t.Error("stream dictionary should serve as trailer")
	}
}

// TestParseXRefStreamErrors tests dictionary validation
func TestParseXRefStreamErrors(t *testing.T) {
	rows := [][]byte{{1, 0, 15, 0}}
	tests := []struct {
		name string
		dict string
	}{
		{"wrong type", "/Type /ObjStm /Size 1 /W [1 2 1]"},
		{"missing size", "/Type /XRef /W [1 2 1]"},
		{"missing W", "/Type /XRef /Size 1"},
		{"short W", "/Type /XRef /Size 1 /W [1 2]"},
		{"too many rows", "/Type /XRef /Size 3 /W [1 2 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewXRefParser(xrefStreamFile(t, tt.dict, rows)).ParseAll(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestParseXRefStreamEntry tests row decoding edge cases
func TestParseXRefStreamEntry(t *testing.T) {
	e, n, err := parseXRefStreamEntry([]byte{0x01, 0x00, 0x05}, []int{0, 2, 1})
	if err != nil || n != 3 {
		t.Fatalf("parseXRefStreamEntry = %v, %d, %v", e, n, err)
	}
	if e.Type != XRefEntryUncompressed || e.Offset != 256 || e.Generation != 5 {
		t.Errorf("zero-width type should default to 1, got %+v", e)
	}
	if _, _, err := parseXRefStreamEntry([]byte{1}, []int{1, 2, 1}); err == nil {
		t.Error("expected error for short row")
	}
	if got := readBigEndianInt([]byte{0x01, 0x02, 0x03}, 3); got != 0x010203 {
		t.Errorf("readBigEndianInt = %#x", got)
	}
}

// TestIsXRefStream tests detection of the xref kind
func TestIsXRefStream(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"xref\n0 1\n", false, false},
		{"12 0 obj", true, false},
		{"trailer", false, true},
	}
	for _, tt := range tests {
		got, err := NewXRefParser([]byte(tt.input)).isXRefStream()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("%q: got %v, %v", tt.input, got, err)
		}
	}
}
