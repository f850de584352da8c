// Package registry maps task identifiers to card factories.
//
// The registry is built once from an explicit list of entries. Every entry
// has a qualified identifier ("algebra.PerfectSquaresTask") and a display
// name ("PerfectSquaresTask"); both must be unique, and New rejects a
// duplicate of either with a configuration error instead of letting one
// entry silently shadow another.
//
// Resolution tries the qualified identifier first, then the display name.
package registry

import (
	"sort"
	"strings"

	"github.com/tsawler/taskcards/task"
	"github.com/tsawler/taskcards/taskerr"
)

// Entry describes one registered task.
type Entry struct {
	Package     string // grouping prefix of the qualified id
	Name        string // display name, unique across the registry
	Description string
	Categories  []task.Category
	Factory     task.Factory
}

// ID returns the qualified identifier "<Package>.<Name>".
func (e Entry) ID() string {
	if e.Package == "" {
		return e.Name
	}
	return e.Package + "." + e.Name
}

// InCategory reports whether the entry belongs to c.
func (e Entry) InCategory(c task.Category) bool {
	for _, ec := range e.Categories {
		if ec == c {
			return true
		}
	}
	return false
}

// Registry is an immutable identifier to factory mapping. It is safe for
// concurrent use.
type Registry struct {
	byID   map[string]Entry
	byName map[string]Entry
	ids    []string // sorted
}

// New builds a registry. It fails with a configuration error when an entry
// has no name or factory, or when two entries share a qualified identifier
// or a display name.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		byID:   make(map[string]Entry, len(entries)),
		byName: make(map[string]Entry, len(entries)),
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, taskerr.Configurationf("registry", "entry %d has no name", i)
		}
		if e.Factory == nil {
			return nil, taskerr.Configurationf("registry", "task %q has no factory", e.ID())
		}
		id := e.ID()
		if _, ok := r.byID[id]; ok {
			return nil, taskerr.Configurationf("registry", "duplicate task id %q", id)
		}
		if prev, ok := r.byName[e.Name]; ok {
			return nil, taskerr.Configurationf("registry", "duplicate task name %q registered by %q and %q", e.Name, prev.ID(), id)
		}
		r.byID[id] = e
		r.byName[e.Name] = e
		r.ids = append(r.ids, id)
	}

	sort.Strings(r.ids)
	return r, nil
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Resolve looks up a task by qualified identifier, then by display name.
func (r *Registry) Resolve(id string) (Entry, error) {
	if e, ok := r.byID[id]; ok {
		return e, nil
	}
	if e, ok := r.byName[id]; ok {
		return e, nil
	}
	return Entry{}, taskerr.Lookupf("registry.resolve", "unknown task %q", id)
}

// Enumerate resolves every identifier before returning. The first unknown
// identifier fails the whole call with a lookup error. Entries are
// de-duplicated by qualified identifier, keeping first-occurrence order.
func (r *Registry) Enumerate(ids []string) ([]Entry, error) {
	out := make([]Entry, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[e.ID()]; ok {
			continue
		}
		seen[e.ID()] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// ByCategory returns every entry in category c, sorted by identifier.
func (r *Registry) ByCategory(c task.Category) []Entry {
	var out []Entry
	for _, id := range r.ids {
		if e := r.byID[id]; e.InCategory(c) {
			out = append(out, e)
		}
	}
	return out
}

// List returns all entries sorted by qualified identifier.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

// Factories returns the factories of entries in order.
func Factories(entries []Entry) []task.Factory {
	out := make([]task.Factory, len(entries))
	for i, e := range entries {
		out[i] = e.Factory
	}
	return out
}
