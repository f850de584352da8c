package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/taskcards/internal/filters"
)

func objectStream(t *testing.T, header, body string, n int, compress bool) *Stream {
	t.Helper()
	data := []byte(header + body)
	dict := Dict{"Type": Name("ObjStm"), "N": Int(n), "First": Int(len(header))}
	if compress {
		z, err := filters.FlateEncode(data)
		if err != nil {
			t.Fatal(err)
		}
		data = z
		dict["Filter"] = Name("FlateDecode")
	}
	return &Stream{Dict: dict, Data: data}
}

// TestObjectStream tests lookup by index and by number
func TestObjectStream(t *testing.T) {
	s := objectStream(t, "11 0 12 11 ", "<< /A 1 >> [1 2 0 R]", 2, true)
	os, err := NewObjectStream(s)
	if err != nil {
		t.Fatalf("NewObjectStream failed: %v", err)
	}
	if os.N() != 2 {
		t.Errorf("N = %d, want 2", os.N())
	}
	if diff := cmp.Diff([]int{11, 12}, os.ObjectNumbers()); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}

	obj, num, err := os.GetObjectByIndex(0)
	if err != nil || num != 11 {
		t.Fatalf("GetObjectByIndex(0) = %v, %d, %v", obj, num, err)
	}
	if diff := cmp.Diff(Dict{"A": Int(1)}, obj); diff != "" {
		t.Errorf("object 11 mismatch (-want +got):\n%s", diff)
	}

	obj, err = os.GetObjectByNumber(12)
	if err != nil {
		t.Fatalf("GetObjectByNumber(12) failed: %v", err)
	}
	if diff := cmp.Diff(Array{Int(1), IndirectRef{Number: 2}}, obj); diff != "" {
		t.Errorf("object 12 mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.GetObjectByNumber(99); err == nil {
		t.Error("expected error for missing object")
	}
	if _, _, err := os.GetObjectByIndex(2); err == nil {
		t.Error("expected error for index out of range")
	}
}

// TestObjectStreamExtends tests the /Extends reference
func TestObjectStreamExtends(t *testing.T) {
	s := objectStream(t, "1 0 ", "5", 1, false)
	s.Dict["Extends"] = IndirectRef{Number: 40}
	os, err := NewObjectStream(s)
	if err != nil {
		t.Fatal(err)
	}
	if ext := os.Extends(); ext == nil || ext.Number != 40 {
		t.Errorf("Extends = %v, want 40 0 R", ext)
	}
}

// TestObjectStreamErrors tests header validation
func TestObjectStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		s    *Stream
	}{
		{"wrong type", &Stream{Dict: Dict{"Type": Name("XRef"), "N": Int(1), "First": Int(0)}}},
		{"missing N", &Stream{Dict: Dict{"Type": Name("ObjStm"), "First": Int(0)}}},
		{"missing First", &Stream{Dict: Dict{"Type": Name("ObjStm"), "N": Int(1)}}},
		{"short header", objectStream(t, "1 ", "5", 1, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewObjectStream(tt.s); err == nil {
				t.Error("expected error")
			}
		})
	}
}
