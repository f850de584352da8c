package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params are the DecodeParms of a FlateDecode stream. Zero fields take the
// PDF defaults.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
}

func (p Params) withDefaults() Params {
	if p.Predictor == 0 {
		p.Predictor = 1
	}
	if p.Colors == 0 {
		p.Colors = 1
	}
	if p.BitsPerComponent == 0 {
		p.BitsPerComponent = 8
	}
	if p.Columns == 0 {
		p.Columns = 1
	}
	return p
}

// FlateDecode inflates zlib data and undoes the predictor named in params.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	p := params.withDefaults()
	switch {
	case p.Predictor == 1:
		return out, nil
	case p.Predictor == 2:
		return undoTIFF(out, p)
	case p.Predictor >= 10 && p.Predictor <= 15:
		return undoPNG(out, p)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", p.Predictor)
	}
}

// FlateEncode deflates data at the default compression level.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// undoTIFF reverses TIFF predictor 2: every sample is stored as the
// difference to the same component of the pixel on its left.
func undoTIFF(data []byte, p Params) ([]byte, error) {
	if p.BitsPerComponent != 8 {
		return nil, fmt.Errorf("TIFF predictor needs 8 bits per component, got %d", p.BitsPerComponent)
	}
	row := p.Columns * p.Colors
	if len(data)%row != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), row)
	}
	out := make([]byte, len(data))
	copy(out, data)
	for start := 0; start < len(out); start += row {
		for i := start + p.Colors; i < start+row; i++ {
			out[i] += out[i-p.Colors]
		}
	}
	return out, nil
}

// undoPNG reverses the PNG filters. Each row carries its own filter type in
// a leading byte, so the predictor value past 10 is only a hint.
func undoPNG(data []byte, p Params) ([]byte, error) {
	bpp := (p.Colors*p.BitsPerComponent + 7) / 8
	width := (p.Columns*p.Colors*p.BitsPerComponent + 7) / 8
	stride := width + 1
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), stride)
	}

	rows := len(data) / stride
	out := make([]byte, rows*width)
	prev := make([]byte, width)
	for r := 0; r < rows; r++ {
		kind := data[r*stride]
		in := data[r*stride+1 : (r+1)*stride]
		cur := out[r*width : (r+1)*width]
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = in[i]
			case 1:
				cur[i] = in[i] + left
			case 2:
				cur[i] = in[i] + up
			case 3:
				cur[i] = in[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = in[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown PNG filter %d", r, kind)
			}
		}
		prev = cur
	}
	return out, nil
}

// paeth picks the neighbour closest to left + up - upLeft.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
