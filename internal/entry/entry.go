package entry

import (
	"sort"
	"strings"

	"github.com/obadir/oba/internal/dn"
)

// Entry is a directory entry: a DN plus its attributes, per spec.md §4.2.
// The zero value is not useful; construct with New.
type Entry struct {
	DN    dn.DN
	attrs map[string]*Attribute
}

// New constructs an empty entry at the given DN.
func New(name dn.DN) *Entry {
	return &Entry{DN: name, attrs: make(map[string]*Attribute)}
}

func lower(s string) string { return strings.ToLower(s) }

// Get returns the named attribute, or nil if it is absent.
func (e *Entry) Get(name string) *Attribute {
	return e.attrs[lower(name)]
}

// AttributeNames returns the user-supplied spelling of every attribute
// present on the entry, in sorted order for deterministic iteration.
func (e *Entry) AttributeNames() []string {
	names := make([]string, 0, len(e.attrs))
	for _, a := range e.attrs {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// RawValues returns an attribute's values as raw bytes, satisfying
// schema.ValidatableEntry so the Validator can run against an Entry
// without this package importing schema.
func (e *Entry) RawValues(name string) [][]byte {
	a := e.attrs[lower(name)]
	if a == nil {
		return nil
	}
	out := make([][]byte, len(a.Values))
	for i, v := range a.Values {
		out[i] = v.Raw()
	}
	return out
}

// Add appends values to an attribute, creating it if absent, skipping
// any value already present (LDAP add-attribute semantics never
// duplicate a value silently).
func (e *Entry) Add(name string, values ...Value) {
	key := lower(name)
	a := e.attrs[key]
	if a == nil {
		a = &Attribute{Name: name}
		e.attrs[key] = a
	}
	for _, v := range values {
		if !a.HasValue(v) {
			a.Values = append(a.Values, v)
		}
	}
}

// Replace sets an attribute's values outright, creating it if absent and
// removing it entirely if values is empty.
func (e *Entry) Replace(name string, values ...Value) {
	key := lower(name)
	if len(values) == 0 {
		delete(e.attrs, key)
		return
	}
	e.attrs[key] = &Attribute{Name: name, Values: append([]Value{}, values...)}
}

// Remove deletes specific values from an attribute; if values is empty,
// or the attribute ends up with none left, the attribute is removed
// entirely.
func (e *Entry) Remove(name string, values ...Value) {
	key := lower(name)
	a := e.attrs[key]
	if a == nil {
		return
	}
	if len(values) == 0 {
		delete(e.attrs, key)
		return
	}
	remaining := a.Values[:0]
	for _, existing := range a.Values {
		keep := true
		for _, v := range values {
			if existing.equalRaw(v) {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == 0 {
		delete(e.attrs, key)
		return
	}
	a.Values = remaining
}

// RemoveAttr deletes an attribute entirely, regardless of its values.
func (e *Entry) RemoveAttr(name string) {
	delete(e.attrs, lower(name))
}

// Clone makes a deep copy so a caller can mutate it without racing with
// concurrent readers of the original (spec.md §5 "never return a pointer
// a caller could mutate").
func (e *Entry) Clone() *Entry {
	out := &Entry{DN: e.DN, attrs: make(map[string]*Attribute, len(e.attrs))}
	for k, a := range e.attrs {
		out.attrs[k] = a.clone()
	}
	return out
}
