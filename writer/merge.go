package writer

import (
	"fmt"
	"io"

	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/reader"
)

// Producer is written to the /Info dictionary of merged documents.
const Producer = "taskcards"

// Merge writes the pages of every input, in argument order, as one
// document. Each page keeps its inherited attributes and every object it
// reaches is copied under a new number.
func Merge(w io.Writer, inputs ...*reader.Reader) error {
	d := New()
	catalog := d.Reserve()
	root := d.Reserve()

	var kids core.Array
	for i, in := range inputs {
		pages, err := in.Pages()
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		c := &copier{src: in, dst: d, root: root, mapped: make(map[int]core.IndirectRef)}

		// Map every page up front so references back to a page, such as
		// an annotation's /P, land on the copy.
		refs := make([]core.IndirectRef, len(pages))
		for j, p := range pages {
			refs[j] = d.Reserve()
			if n := p.Ref().Number; n > 0 {
				c.mapped[n] = refs[j]
			}
		}
		for j, p := range pages {
			dict, err := c.copyObject(p.Materialize())
			if err != nil {
				return fmt.Errorf("input %d, page %d: %w", i, j+1, err)
			}
			page := dict.(core.Dict)
			page["Parent"] = root
			d.Set(refs[j], page)
			kids = append(kids, refs[j])
		}
	}

	d.Set(root, core.Dict{"Type": core.Name("Pages"), "Kids": kids, "Count": core.Int(len(kids))})
	d.Set(catalog, core.Dict{"Type": core.Name("Catalog"), "Pages": root})
	info := d.Add(core.Dict{"Producer": core.String(Producer)})
	return d.Write(w, catalog, info)
}

// MergeFiles merges the PDF files at paths into w.
func MergeFiles(w io.Writer, paths ...string) error {
	inputs := make([]*reader.Reader, len(paths))
	for i, path := range paths {
		r, err := reader.Open(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		inputs[i] = r
	}
	return Merge(w, inputs...)
}

// copier deep-copies objects from one reader into a document
type copier struct {
	src    *reader.Reader
	dst    *Document
	root   core.IndirectRef
	mapped map[int]core.IndirectRef
}

func (c *copier) copyObject(obj core.Object) (core.Object, error) {
	switch v := obj.(type) {
	case core.IndirectRef:
		return c.copyRef(v)
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			cp, err := c.copyObject(elem)
			if err != nil {
				return nil, err
			}
			out[i] = cp
		}
		return out, nil
	case core.Dict:
		out := make(core.Dict, len(v))
		for key, val := range v {
			cp, err := c.copyObject(val)
			if err != nil {
				return nil, fmt.Errorf("/%s: %w", key, err)
			}
			out[key] = cp
		}
		return out, nil
	case *core.Stream:
		dict, err := c.copyObject(v.Dict)
		if err != nil {
			return nil, err
		}
		return &core.Stream{Dict: dict.(core.Dict), Data: v.Data}, nil
	default:
		return obj, nil
	}
}

// copyRef copies the object behind ref once. Nodes of the source page tree
// map to the new root so a stray /Parent cannot pull in foreign pages.
func (c *copier) copyRef(ref core.IndirectRef) (core.Object, error) {
	if to, ok := c.mapped[ref.Number]; ok {
		return to, nil
	}
	obj, err := c.src.ResolveReference(ref)
	if err != nil {
		return nil, err
	}
	if dict, ok := obj.(core.Dict); ok {
		if t, _ := dict.GetName("Type"); t == "Pages" {
			c.mapped[ref.Number] = c.root
			return c.root, nil
		}
	}

	to := c.dst.Reserve()
	c.mapped[ref.Number] = to
	cp, err := c.copyObject(obj)
	if err != nil {
		return nil, err
	}
	c.dst.Set(to, cp)
	return to, nil
}
