package partition

import (
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// Add implements spec.md §4.3's Add algorithm: resolve the parent, reject
// alias parents and duplicate DNs, schema-check, allocate an ID, write
// the master record and every affected index.
func (p *Partition) Add(e *entry.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := e.DN
	isSuffixRoot := target.Equal(p.Suffix, dn.Comparator(p.registry))

	var parentID ID
	if !isSuffixRoot {
		parent, ok := target.Parent()
		if !ok {
			return errs.New(errs.KindNamingViolation, "cannot add the root DSE")
		}
		id, err := p.resolve(parent)
		if err != nil {
			return err
		}
		parentID = id
		if parentEntry, err := p.lookupLocked(parentID); err == nil && isAlias(parentEntry, p.registry) {
			return errs.New(errs.KindAliasProblem, "cannot add an entry under an alias").WithMatchedDN(parent.String())
		}
	} else {
		parentID = RootID
	}

	if _, err := p.resolve(target); err == nil {
		return errs.New(errs.KindEntryAlreadyExists, "entry already exists: "+target.String())
	}

	if err := schema.NewValidator(p.registry).ValidateEntry(e); err != nil {
		return err
	}

	working := e.Clone()
	if working.Get("entryUUID") == nil {
		working.Add("entryUUID", entry.NewEntryUUID())
	}
	csn := p.csnGen.Next(time.Now())
	working.Replace("entryCSN", entry.NewTextValue(csn.String()))

	id := p.nextID
	p.nextID++
	idKey := encodeID(id)

	if err := p.master.PutUnique(idKey, p.encodeEntry(working)); err != nil {
		return errs.Wrap(errs.KindOperationsError, "master table write failed", err)
	}

	uuidText := working.Get("entryUUID").Values[0].String()
	if err := p.uuidIndex.PutUnique([]byte(uuidText), idKey); err != nil {
		p.master.DeleteKey(idKey)
		return errs.Wrap(errs.KindOperationsError, "uuid index write failed", err)
	}

	leafRDN, _ := target.RDNAt(0)
	normRDN := dn.NormalizeRDN(leafRDN, p.registry)
	if err := p.rdnFwd.PutUnique(compositeKey(encodeID(parentID), []byte(normRDN)), idKey); err != nil {
		p.master.DeleteKey(idKey)
		return errs.Wrap(errs.KindOperationsError, "rdn index write failed", err)
	}
	p.rdnRev.ReplaceUnique(idKey, compositeKey(encodeID(parentID), []byte(leafRDN.String())))
	p.oneLevel.Put(encodeID(parentID), idKey)

	for ancestor := parentID; ; {
		p.subLevel.Put(encodeID(ancestor), idKey)
		if ancestor == RootID {
			break
		}
		next, ok := p.ancestorOf(ancestor)
		if !ok {
			break
		}
		ancestor = next
	}

	p.indexValues(id, working)

	if isAlias(working, p.registry) {
		tgt, err := aliasTarget(working)
		if err == nil {
			p.alias.PutUnique(idKey, []byte(tgt.String()))
			p.oneAlias.Put(encodeID(parentID), idKey)
			for ancestor := parentID; ; {
				p.subAlias.Put(encodeID(ancestor), idKey)
				if ancestor == RootID {
					break
				}
				next, ok := p.ancestorOf(ancestor)
				if !ok {
					break
				}
				ancestor = next
			}
		}
	}

	return nil
}

// ancestorOf returns id's parent, by walking the rdn.rev index.
func (p *Partition) ancestorOf(id ID) (ID, bool) {
	val, ok := p.rdnRev.GetOne(encodeID(id))
	if !ok || len(val) < 8 {
		return 0, false
	}
	return decodeID(val[:8]), true
}

// indexValues inserts e's values into the presence and per-attribute
// user indexes, for every attribute the partition indexes.
func (p *Partition) indexValues(id ID, e *entry.Entry) {
	idKey := encodeID(id)
	for _, name := range e.AttributeNames() {
		oid := p.registry.CanonicalOID(name)
		p.presence.Put([]byte(oid), idKey)
		if !p.isIndexed(oid) {
			continue
		}
		for _, raw := range e.RawValues(name) {
			norm := p.registry.NormalizeEquality(name, raw)
			p.userFwd.Put(compositeKey([]byte(oid), norm), idKey)
			p.userRev.Put(idKey, compositeKey([]byte(oid), norm))
		}
	}
}

// deindexValues removes e's values from the presence and per-attribute
// user indexes, the mirror of indexValues used by Delete and Modify.
func (p *Partition) deindexValues(id ID, e *entry.Entry) {
	idKey := encodeID(id)
	for _, name := range e.AttributeNames() {
		oid := p.registry.CanonicalOID(name)
		p.presence.Delete([]byte(oid), idKey)
		if !p.isIndexed(oid) {
			continue
		}
		for _, raw := range e.RawValues(name) {
			norm := p.registry.NormalizeEquality(name, raw)
			p.userFwd.Delete(compositeKey([]byte(oid), norm), idKey)
			p.userRev.Delete(idKey, compositeKey([]byte(oid), norm))
		}
	}
}
