package core

import (
	"fmt"

	"github.com/tsawler/taskcards/internal/filters"
)

// Decode applies the stream's /Filter chain to its data. Image codecs
// (DCTDecode, JPXDecode) end the chain and leave their data encoded, since
// the image package decodes them.
func (s *Stream) Decode() ([]byte, error) {
	names, params, err := s.filterChain()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		switch name {
		case "FlateDecode", "Fl":
			data, err = filters.FlateDecode(data, decodeParams(params[i]))
			if err != nil {
				return nil, fmt.Errorf("filter %d (%s) failed: %w", i, name, err)
			}
		case "DCTDecode", "DCT", "JPXDecode":
			return data, nil
		default:
			return nil, fmt.Errorf("unsupported filter: %s", name)
		}
	}
	return data, nil
}

// Filters returns the names in the stream's /Filter entry.
func (s *Stream) Filters() []string {
	names, _, _ := s.filterChain()
	return names
}

func (s *Stream) filterChain() ([]string, []Dict, error) {
	var names []string
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, v := range f {
			n, ok := v.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, v)
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	params := make([]Dict, len(names))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		params[0] = p
	case Array:
		for i := range params {
			if d, ok := p.Get(i).(Dict); ok {
				params[i] = d
			}
		}
	}
	return names, params, nil
}

func decodeParams(d Dict) filters.Params {
	get := func(key string) int {
		v, _ := d.GetInt(key)
		return int(v)
	}
	return filters.Params{
		Predictor:        get("Predictor"),
		Colors:           get("Colors"),
		BitsPerComponent: get("BitsPerComponent"),
		Columns:          get("Columns"),
	}
}
