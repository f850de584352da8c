package core

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestParseObject tests direct objects and references
func TestParseObject(t *testing.T) {
	tests := []struct {
		input string
		want  Object
	}{
		{"42", Int(42)},
		{"-1.5", Real(-1.5)},
		{"(hi)", String("hi")},
		{"/Name", Name("Name")},
		{"true", Bool(true)},
		{"null", Null{}},
		{"12 0 R", IndirectRef{Number: 12}},
		{"[1 2 0 R 3]", Array{Int(1), IndirectRef{Number: 2}, Int(3)}},
		{"[1 2]", Array{Int(1), Int(2)}},
		{"<< /A 1 /B [/X] /C null >>", Dict{"A": Int(1), "B": Array{Name("X")}}},
		{"<< /Kids [3 0 R 4 0 R] >>", Dict{"Kids": Array{IndirectRef{Number: 3}, IndirectRef{Number: 4}}}},
	}
	for _, tt := range tests {
		got, err := NewParser([]byte(tt.input)).ParseObject()
		if err != nil {
			t.Errorf("%q: %v", tt.input, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

// TestParseObjectErrors tests malformed objects
func TestParseObjectErrors(t *testing.T) {
	for _, input := range []string{"", "[1 2", "<< 1 2 >>", "<< /A >>", "endobj"} {
		if _, err := NewParser([]byte(input)).ParseObject(); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

// TestParseIndirectObject tests object headers and the endobj keyword
func TestParseIndirectObject(t *testing.T) {
	p := NewParser([]byte("7 1 obj << /Type /Catalog >> endobj 8 0 obj 5 endobj"))
	obj, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject failed: %v", err)
	}
	if obj.Ref != (IndirectRef{Number: 7, Generation: 1}) {
		t.Errorf("ref = %v", obj.Ref)
	}
	next, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatalf("second object: %v", err)
	}
	if next.Object != Int(5) {
		t.Errorf("second object = %v, want 5", next.Object)
	}

	if _, err := NewParser([]byte("7 0 xx 5 endobj")).ParseIndirectObject(); err == nil {
		t.Error("expected error for missing obj keyword")
	}
}

// TestParseStream tests direct, indirect and wrong stream lengths
func TestParseStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		resolver ReferenceResolver
	}{
		{"direct", "1 0 obj << /Length 5 >> stream\nhello\nendstream endobj", nil},
		{"crlf", "1 0 obj << /Length 5 >> stream\r\nhello\r\nendstream endobj", nil},
		{"indirect", "1 0 obj << /Length 9 0 R >> stream\nhello\nendstream endobj", func(IndirectRef) (Object, error) { return Int(5), nil }},
		{"wrong length", "1 0 obj << /Length 99 >> stream\nhello\nendstream endobj", nil},
		{"no resolver", "1 0 obj << /Length 9 0 R >> stream\nhello\nendstream endobj", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser([]byte(tt.input))
			p.SetReferenceResolver(tt.resolver)
			obj, err := p.ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject failed: %v", err)
			}
			s, ok := obj.Object.(*Stream)
			if !ok {
				t.Fatalf("expected stream, got %T", obj.Object)
			}
			if !bytes.Equal(s.Data, []byte("hello")) {
				t.Errorf("data = %q, want hello", s.Data)
			}
		})
	}
}

// TestParseStreamWithoutEndstream tests truncated streams
func TestParseStreamWithoutEndstream(t *testing.T) {
	p := NewParser([]byte("1 0 obj << >> stream\nhello"))
	if _, err := p.ParseIndirectObject(); err == nil {
		t.Error("expected error for stream without endstream")
	}
}
