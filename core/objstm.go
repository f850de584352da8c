package core

import "fmt"

// ObjectStream holds the objects packed into one /Type /ObjStm stream
type ObjectStream struct {
	data    []byte
	first   int
	numbers []int
	offsets []int
	extends *IndirectRef
}

// NewObjectStream decodes an object stream and reads its header
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if t, ok := stream.Dict.GetName("Type"); !ok || t != "ObjStm" {
		return nil, fmt.Errorf("stream has /Type %v, want /ObjStm", stream.Dict.Get("Type"))
	}
	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream missing /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream missing /First")
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode object stream: %w", err)
	}
	if int(first) > len(data) {
		return nil, fmt.Errorf("object stream /First %d beyond %d bytes", first, len(data))
	}

	os := &ObjectStream{data: data, first: int(first)}
	if ref, ok := stream.Dict.GetIndirectRef("Extends"); ok {
		os.extends = &ref
	}

	lex := NewLexer(data[:first])
	for i := 0; i < int(n); i++ {
		var pair [2]int64
		for j := range pair {
			tok, err := lex.NextToken()
			if err != nil {
				return nil, err
			}
			if pair[j], err = tok.Int(); err != nil {
				return nil, fmt.Errorf("object stream header entry %d: %w", i, err)
			}
		}
		os.numbers = append(os.numbers, int(pair[0]))
		os.offsets = append(os.offsets, int(pair[1]))
	}
	return os, nil
}

// N returns the number of objects in the stream
func (os *ObjectStream) N() int {
	return len(os.numbers)
}

// Extends returns the stream this one extends, if any
func (os *ObjectStream) Extends() *IndirectRef {
	return os.extends
}

// ObjectNumbers returns the object numbers in stream order
func (os *ObjectStream) ObjectNumbers() []int {
	return append([]int(nil), os.numbers...)
}

// GetObjectByIndex parses the object at index and returns it with its
// object number
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if index < 0 || index >= len(os.numbers) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.numbers))
	}
	start := os.first + os.offsets[index]
	if start > len(os.data) {
		return nil, 0, fmt.Errorf("object %d offset beyond stream data", os.numbers[index])
	}
	p := NewParser(os.data)
	if err := p.Seek(int64(start)); err != nil {
		return nil, 0, err
	}
	obj, err := p.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse object %d: %w", os.numbers[index], err)
	}
	return obj, os.numbers[index], nil
}

// GetObjectByNumber finds an object by number
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, error) {
	for i, n := range os.numbers {
		if n == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", objNum)
}
