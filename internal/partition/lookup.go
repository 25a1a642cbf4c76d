package partition

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
)

// lookupLocked returns the entry for id without acquiring p.mu; callers
// must already hold it (for read or write).
func (p *Partition) lookupLocked(id ID) (*entry.Entry, error) {
	raw, ok := p.master.GetOne(encodeID(id))
	if !ok {
		return nil, errs.New(errs.KindNoSuchObject, "no such entry")
	}
	return p.decodeEntry(raw)
}

// Lookup resolves target and returns its entry, optionally filtered to
// attrIds (nil or empty returns every stored attribute, operational ones
// included; the Search Engine applies the full `*`/`+`/`1.1` sentinel
// vocabulary described in spec.md §4.4).
func (p *Partition) Lookup(target dn.DN, attrIds []string) (*entry.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, err := p.resolve(target)
	if err != nil {
		return nil, err
	}
	e, err := p.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	if len(attrIds) == 0 {
		return e, nil
	}
	return projectAttributes(e, attrIds), nil
}

// LookupByID returns the entry stored under id, used by the Search
// Engine's cursor builder once candidate IDs are known.
func (p *Partition) LookupByID(id ID) (*entry.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lookupLocked(id)
}

// LookupByUUID resolves an entryUUID value to its entry, via the uuid
// index, independent of where the entry currently sits in the DIT.
func (p *Partition) LookupByUUID(uuidText string) (*entry.Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idBytes, ok := p.uuidIndex.GetOne([]byte(uuidText))
	if !ok {
		return nil, errs.New(errs.KindNoSuchObject, "no such entryUUID: "+uuidText)
	}
	return p.lookupLocked(decodeID(idBytes))
}

// HasEntry reports whether target resolves to an entry in this partition.
func (p *Partition) HasEntry(target dn.DN) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, err := p.resolve(target)
	return err == nil
}

// List returns the DNs of target's immediate children, per the one-level
// index.
func (p *Partition) List(target dn.DN) ([]dn.DN, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, err := p.resolve(target)
	if err != nil {
		return nil, err
	}
	children, _ := p.oneLevel.Get(encodeID(id))
	out := make([]dn.DN, 0, len(children))
	for _, c := range children {
		childDN, err := p.entryDN(decodeID(c))
		if err != nil {
			return nil, err
		}
		out = append(out, childDN)
	}
	return out, nil
}

// projectAttributes returns a shallow copy of e containing only the
// named attributes.
func projectAttributes(e *entry.Entry, attrIds []string) *entry.Entry {
	out := entry.New(e.DN)
	for _, id := range attrIds {
		if a := e.Get(id); a != nil {
			out.Add(a.Name, a.Values...)
		}
	}
	return out
}
