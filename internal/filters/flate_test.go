package filters

import (
	"bytes"
	"testing"
)

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := FlateEncode(data)
	if err != nil {
		t.Fatalf("FlateEncode failed: %v", err)
	}
	return out
}

// TestFlateRoundTrip tests that FlateDecode inverts FlateEncode
func TestFlateRoundTrip(t *testing.T) {
	original := []byte("Hello, World! This is test data for FlateDecode.")
	decoded, err := FlateDecode(compress(t, original), Params{})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Errorf("got %q, want %q", decoded, original)
	}
}

// TestFlateDecodeInvalid tests that garbage input is rejected
func TestFlateDecodeInvalid(t *testing.T) {
	if _, err := FlateDecode([]byte("not zlib"), Params{}); err == nil {
		t.Error("expected error for invalid data")
	}
}

// TestPNGPredictors tests every PNG row filter
func TestPNGPredictors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{"none", []byte{0, 1, 2, 3, 0, 4, 5, 6}, []byte{1, 2, 3, 4, 5, 6}},
		{"sub", []byte{1, 1, 1, 1, 1, 4, 1, 1}, []byte{1, 2, 3, 4, 5, 6}},
		{"up", []byte{0, 1, 2, 3, 2, 3, 3, 3}, []byte{1, 2, 3, 4, 5, 6}},
		{"average", []byte{0, 2, 4, 6, 3, 1, 1, 1}, []byte{2, 4, 6, 2, 4, 6}},
		{"paeth", []byte{0, 1, 2, 3, 4, 3, 1, 1}, []byte{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlateDecode(compress(t, tt.data), Params{Predictor: 12, Columns: 3})
			if err != nil {
				t.Fatalf("FlateDecode failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPNGPredictorXRefRows tests the layout used by xref streams: 1 2 1
// byte fields, up filter on every row
func TestPNGPredictorXRefRows(t *testing.T) {
	raw := []byte{
		2, 1, 0, 15, 0,
		2, 0, 0, 85, 0,
	}
	got, err := FlateDecode(compress(t, raw), Params{Predictor: 12, Columns: 4})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	want := []byte{1, 0, 15, 0, 1, 0, 100, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestPNGPredictorErrors tests malformed predictor input
func TestPNGPredictorErrors(t *testing.T) {
	if _, err := FlateDecode(compress(t, []byte{0, 1, 2}), Params{Predictor: 12, Columns: 3}); err == nil {
		t.Error("expected error for short row")
	}
	if _, err := FlateDecode(compress(t, []byte{9, 1, 2, 3}), Params{Predictor: 12, Columns: 3}); err == nil {
		t.Error("expected error for unknown filter type")
	}
	if _, err := FlateDecode(compress(t, []byte{1}), Params{Predictor: 7}); err == nil {
		t.Error("expected error for unsupported predictor")
	}
}

// TestTIFFPredictor tests horizontal differencing with two colours
func TestTIFFPredictor(t *testing.T) {
	raw := []byte{10, 20, 1, 2, 3, 4}
	got, err := FlateDecode(compress(t, raw), Params{Predictor: 2, Colors: 2, Columns: 3})
	if err != nil {
		t.Fatalf("FlateDecode failed: %v", err)
	}
	want := []byte{10, 20, 11, 22, 14, 26}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
