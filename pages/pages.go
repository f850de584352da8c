package pages

import (
	"fmt"

	"github.com/tsawler/taskcards/core"
)

// Inheritable lists the page attributes a page takes from its ancestors.
var Inheritable = []string{"MediaBox", "CropBox", "Resources", "Rotate"}

// ObjectResolver resolves indirect references
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Type returns the catalog type (should be "Catalog")
func (c *Catalog) Type() string {
	name, _ := c.dict.GetName("Type")
	return string(name)
}

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	ref := c.dict.Get("Pages")
	if ref == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	obj, err := c.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	dict, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", obj)
	}
	return dict, nil
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the /Count of the root node
func (t *PageTree) Count() (int, error) {
	count, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}
	return int(count), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all leaf pages in document order
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		t.pages = make([]*Page, 0)
		visited := make(map[core.IndirectRef]bool)
		if err := t.traverse(t.root, core.Dict{}, visited); err != nil {
			t.pages = nil
			return nil, fmt.Errorf("failed to traverse page tree: %w", err)
		}
	}
	return t.pages, nil
}

// traverse walks a node, carrying the inheritable attributes collected from
// every ancestor.
func (t *PageTree) traverse(node, inherited core.Dict, visited map[core.IndirectRef]bool) error {
	typ, ok := node.GetName("Type")
	if !ok {
		// Some producers omit /Type on leaves.
		if node.Has("Kids") {
			typ = "Pages"
		} else {
			typ = "Page"
		}
	}

	switch typ {
	case "Pages":
		next := inherited.Clone()
		for _, key := range Inheritable {
			if v := node.Get(key); v != nil {
				next[key] = v
			}
		}

		obj, err := t.resolver.Resolve(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}
		kids, ok := obj.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", obj)
		}
		for i, kid := range kids {
			ref, isRef := kid.(core.IndirectRef)
			if isRef {
				if visited[ref] {
					return fmt.Errorf("page tree cycle at %s", ref)
				}
				visited[ref] = true
			}
			resolved, err := t.resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}
			dict, ok := resolved.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", resolved)
			}
			if typ, _ := dict.GetName("Type"); typ == "Page" || !dict.Has("Kids") {
				t.pages = append(t.pages, &Page{dict: dict, ref: ref, inherited: next, resolver: t.resolver})
				continue
			}
			if err := t.traverse(dict, next, visited); err != nil {
				return err
			}
		}
	case "Page":
		t.pages = append(t.pages, &Page{dict: node, inherited: inherited, resolver: t.resolver})
	default:
		return fmt.Errorf("unexpected page node type: %s", typ)
	}
	return nil
}

// Rectangle is a PDF rectangle in points
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Page represents a single PDF page
type Page struct {
	dict      core.Dict
	ref       core.IndirectRef
	inherited core.Dict
	resolver  ObjectResolver
}

// NewPage creates a page from its dictionary and the inheritable attributes
// of its ancestors
func NewPage(dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{dict: dict, inherited: inherited, resolver: resolver}
}

// Dict returns the page's own dictionary
func (p *Page) Dict() core.Dict {
	return p.dict
}

// Ref returns the page object's reference, zero when the page was direct
func (p *Page) Ref() core.IndirectRef {
	return p.ref
}

// Attr returns a page attribute, falling back to inherited values
func (p *Page) Attr(key string) core.Object {
	if v := p.dict.Get(key); v != nil {
		return v
	}
	return p.inherited.Get(key)
}

// Materialize returns a copy of the page dictionary with inherited
// attributes written in and /Parent removed.
func (p *Page) Materialize() core.Dict {
	out := p.dict.Clone()
	delete(out, "Parent")
	for _, key := range Inheritable {
		if !out.Has(key) {
			if v := p.inherited.Get(key); v != nil {
				out[key] = v
			}
		}
	}
	return out
}

// MediaBox returns the page media box
func (p *Page) MediaBox() (Rectangle, error) {
	return p.box("MediaBox")
}

// CropBox returns the crop box, defaulting to the media box
func (p *Page) CropBox() (Rectangle, error) {
	if p.Attr("CropBox") == nil {
		return p.MediaBox()
	}
	return p.box("CropBox")
}

func (p *Page) box(name string) (Rectangle, error) {
	obj := p.Attr(name)
	if obj == nil {
		return Rectangle{}, fmt.Errorf("%s not found", name)
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return Rectangle{}, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 4 {
		return Rectangle{}, fmt.Errorf("invalid %s: %v", name, resolved)
	}
	var v [4]float64
	for i := range v {
		if v[i], ok = arr.Number(i); !ok {
			return Rectangle{}, fmt.Errorf("invalid %s element %d: %v", name, i, arr[i])
		}
	}
	return Rectangle{LLX: v[0], LLY: v[1], URX: v[2], URY: v[3]}, nil
}

// Resources returns the page resources dictionary
func (p *Page) Resources() (core.Dict, error) {
	obj := p.Attr("Resources")
	if obj == nil {
		return nil, fmt.Errorf("resources not found")
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid Resources type: %T", resolved)
	}
	return dict, nil
}

// Rotate returns the page rotation (0, 90, 180, or 270)
func (p *Page) Rotate() int {
	r, _ := p.Attr("Rotate").(core.Int)
	return int(r)
}

// Size returns the media box width and height in points
func (p *Page) Size() (width, height float64, err error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, 0, err
	}
	return box.Width(), box.Height(), nil
}
