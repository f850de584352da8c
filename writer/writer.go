package writer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/tsawler/taskcards/core"
)

// Version is the PDF version written in the header.
const Version = "1.5"

// Document is a set of numbered objects waiting to be written
type Document struct {
	objects []core.Object // object number i+1
}

// New returns an empty document
func New() *Document {
	return &Document{}
}

// Add appends an object and returns its reference
func (d *Document) Add(obj core.Object) core.IndirectRef {
	d.objects = append(d.objects, obj)
	return core.IndirectRef{Number: len(d.objects)}
}

// Reserve allocates an object number to be filled by Set
func (d *Document) Reserve() core.IndirectRef {
	return d.Add(nil)
}

// Set stores the object for a reserved reference
func (d *Document) Set(ref core.IndirectRef, obj core.Object) {
	d.objects[ref.Number-1] = obj
}

// Len returns the number of objects
func (d *Document) Len() int {
	return len(d.objects)
}

// Write serializes the document with root as the trailer /Root and info, if
// non-zero, as /Info.
func (d *Document) Write(w io.Writer, root, info core.IndirectRef) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", Version)

	offsets := make([]int, len(d.objects))
	for i, obj := range d.objects {
		if obj == nil {
			return fmt.Errorf("object %d was reserved but never set", i+1)
		}
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		if err := writeObject(&buf, obj); err != nil {
			return fmt.Errorf("object %d: %w", i+1, err)
		}
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(d.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := core.Dict{"Size": core.Int(len(d.objects) + 1), "Root": root}
	if info.Number > 0 {
		trailer["Info"] = info
	}
	buf.WriteString("trailer\n")
	if err := writeObject(&buf, trailer); err != nil {
		return err
	}
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xref)

	_, err := buf.WriteTo(w)
	return err
}

// writeObject serializes one object in PDF syntax
func writeObject(buf *bytes.Buffer, obj core.Object) error {
	switch v := obj.(type) {
	case core.Null:
		buf.WriteString("null")
	case core.Bool:
		buf.WriteString(strconv.FormatBool(bool(v)))
	case core.Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case core.Real:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case core.String:
		writeString(buf, string(v))
	case core.Name:
		writeName(buf, string(v))
	case core.IndirectRef:
		fmt.Fprintf(buf, "%d %d R", v.Number, v.Generation)
	case core.Array:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if err := writeObject(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case core.Dict:
		buf.WriteString("<<")
		for _, key := range v.Keys() {
			writeName(buf, key)
			buf.WriteByte(' ')
			if err := writeObject(buf, v[key]); err != nil {
				return fmt.Errorf("/%s: %w", key, err)
			}
		}
		buf.WriteString(">>")
	case *core.Stream:
		dict := v.Dict.Clone()
		dict["Length"] = core.Int(len(v.Data))
		if err := writeObject(buf, dict); err != nil {
			return err
		}
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	default:
		return fmt.Errorf("cannot serialize %T", obj)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			if c < 0x20 || c > 0x7e {
				fmt.Fprintf(buf, "\\%03o", c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte(')')
}

func writeName(buf *bytes.Buffer, name string) {
	buf.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || c == '#' || bytes.IndexByte([]byte("()<>[]{}/%"), c) >= 0 {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}
