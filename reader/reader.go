package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tsawler/taskcards/core"
	"github.com/tsawler/taskcards/pages"
)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// maxResolveDepth bounds chains of references to references.
const maxResolveDepth = 32

// Reader represents an in-memory PDF document
type Reader struct {
	data       []byte
	xrefTable  *core.XRefTable
	version    PDFVersion
	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	pageTree   *pages.PageTree
}

var _ pages.ObjectResolver = (*Reader)(nil)

// NewReader parses the header and cross-reference data of a PDF held in data
func NewReader(data []byte) (*Reader, error) {
	r := &Reader{
		data:       data,
		objCache:   make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}

	version, err := parseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	xp := core.NewXRefParser(data)
	xp.Parser().SetReferenceResolver(r.ResolveReference)
	table, err := xp.ParseAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	r.xrefTable = table
	return r, nil
}

// NewReaderFrom reads all of rd and parses it
func NewReaderFrom(rd io.Reader) (*Reader, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return NewReader(data)
}

// Open reads a PDF file and returns a Reader
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewReader(data)
}

// parseHeader parses the %PDF-x.y header, which may follow leading junk
// within the first kilobyte
func parseHeader(data []byte) (PDFVersion, error) {
	head := data[:min(len(data), 1024)]
	i := bytes.Index(head, []byte("%PDF-"))
	if i < 0 {
		return PDFVersion{}, fmt.Errorf("invalid PDF header")
	}
	rest := head[i+5:]
	dot := bytes.IndexByte(rest, '.')
	if dot < 1 {
		return PDFVersion{}, fmt.Errorf("invalid version format")
	}
	end := dot + 1
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	major, err := strconv.Atoi(string(rest[:dot]))
	if err != nil {
		return PDFVersion{}, fmt.Errorf("invalid major version: %w", err)
	}
	minor, err := strconv.Atoi(string(rest[dot+1 : end]))
	if err != nil {
		return PDFVersion{}, fmt.Errorf("invalid minor version: %w", err)
	}
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the PDF version from the header
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the merged trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.xrefTable.Trailer
}

// XRefTable returns the merged cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// GetObject loads an object by number
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if r.xrefTable == nil {
		return nil, fmt.Errorf("object %d requested before the xref table is loaded", objNum)
	}
	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself while loading", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	entry, ok := r.xrefTable.Get(objNum)
	if !ok || !entry.InUse {
		// Missing and free objects are null.
		return core.Null{}, nil
	}

	var obj core.Object
	switch entry.Type {
	case core.XRefEntryCompressed:
		stm, err := r.objectStream(int(entry.Offset))
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", objNum, err)
		}
		obj, err = stm.GetObjectByNumber(objNum)
		if err != nil {
			return nil, err
		}
	default:
		// Indirect /Length values are parsed mid-stream, so each object
		// gets its own parser.
		p := core.NewParser(r.data)
		p.SetReferenceResolver(r.ResolveReference)
		if err := p.Seek(entry.Offset); err != nil {
			return nil, fmt.Errorf("object %d: %w", objNum, err)
		}
		ind, err := p.ParseIndirectObject()
		if err != nil {
			return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
		}
		if ind.Ref.Number != objNum {
			return nil, fmt.Errorf("xref points object %d at object %d", objNum, ind.Ref.Number)
		}
		obj = ind.Object
	}

	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) objectStream(num int) (*core.ObjectStream, error) {
	if stm, ok := r.objStreams[num]; ok {
		return stm, nil
	}
	obj, err := r.GetObject(num)
	if err != nil {
		return nil, fmt.Errorf("failed to load object stream %d: %w", num, err)
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %T", num, obj)
	}
	stm, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}
	r.objStreams[num] = stm
	return stm, nil
}

// ResolveReference loads the object a reference points to
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve follows indirect references until it reaches a direct object.
// A nil object resolves to nil.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	for i := 0; i < maxResolveDepth; i++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		var err error
		if obj, err = r.ResolveReference(ref); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("reference chain deeper than %d", maxResolveDepth)
}

// GetCatalog returns the document catalog
func (r *Reader) GetCatalog() (core.Dict, error) {
	root := r.Trailer().Get("Root")
	if root == nil {
		return nil, fmt.Errorf("trailer missing /Root")
	}
	obj, err := r.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Root: %w", err)
	}
	dict, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid catalog type: %T", obj)
	}
	return dict, nil
}

// PageCount returns the number of leaf pages in the page tree
func (r *Reader) PageCount() (int, error) {
	all, err := r.Pages()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// GetPage returns the page at index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.GetPage(index)
}

// Pages returns every page in document order
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages()
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return err
	}
	root, err := pages.NewCatalog(catalog, r).Pages()
	if err != nil {
		return err
	}
	r.pageTree = pages.NewPageTree(root, r)
	return nil
}
