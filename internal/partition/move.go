package partition

import (
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// Move implements spec.md §4.3's Move algorithm: re-parents an entry
// (and, via the sub-level closure, every descendant) under a new parent,
// dropping ancestor-closure entries for the part of the old path that is
// no longer an ancestor and adding entries for the new path.
func (p *Partition) Move(target dn.DN, newParent dn.DN) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.move(target, newParent, nil, false)
}

// MoveAndRename composes Move and Rename: the entry is re-parented and
// takes a new leaf RDN in the same step, per spec.md §4.3.
func (p *Partition) MoveAndRename(target dn.DN, newParent dn.DN, newRDN dn.RDN, deleteOldRdnAttr bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.move(target, newParent, newRDN, deleteOldRdnAttr)
}

func (p *Partition) move(target, newParent dn.DN, newRDN dn.RDN, deleteOldRdnAttr bool) error {
	cmp := dn.Comparator(p.registry)
	if newParent.Equal(target, cmp) || newParent.IsDescendantOf(target, cmp) {
		return errs.New(errs.KindNamingViolation, "cannot move an entry under itself")
	}

	id, err := p.resolve(target)
	if err != nil {
		return err
	}
	oldParent, ok := target.Parent()
	if !ok {
		return errs.New(errs.KindNamingViolation, "cannot move the root DSE")
	}
	oldParentID, err := p.resolve(oldParent)
	if err != nil {
		return err
	}
	newParentID, err := p.resolve(newParent)
	if err != nil {
		return err
	}

	leafRDN, _ := target.RDNAt(0)
	renaming := newRDN != nil && !newRDN.Equal(leafRDN, cmp)
	if newRDN == nil {
		newRDN = leafRDN
	}
	newDN := newParent.AppendParent(newRDN)
	if _, err := p.resolve(newDN); err == nil {
		return errs.New(errs.KindEntryAlreadyExists, "entry already exists: "+newDN.String())
	}

	idKey := encodeID(id)
	oldNorm := dn.NormalizeRDN(leafRDN, p.registry)
	newNorm := dn.NormalizeRDN(newRDN, p.registry)

	p.rdnFwd.Delete(compositeKey(encodeID(oldParentID), []byte(oldNorm)), idKey)
	if err := p.rdnFwd.PutUnique(compositeKey(encodeID(newParentID), []byte(newNorm)), idKey); err != nil {
		return errs.Wrap(errs.KindOperationsError, "rdn index write failed", err)
	}
	p.rdnRev.ReplaceUnique(idKey, compositeKey(encodeID(newParentID), []byte(newRDN.String())))
	p.oneLevel.Delete(encodeID(oldParentID), idKey)
	p.oneLevel.Put(encodeID(newParentID), idKey)

	oldChain := p.ancestorChain(oldParentID)
	newChain := p.ancestorChain(newParentID)
	oldSet, newSet := toSet(oldChain), toSet(newChain)

	subtree := p.subtreeIDs(id)

	for _, member := range append([]ID{id}, subtree...) {
		mKey := encodeID(member)
		isAliasMember := p.alias.Has(mKey)
		for _, a := range oldChain {
			if !newSet[a] {
				p.subLevel.Delete(encodeID(a), mKey)
				if isAliasMember {
					p.subAlias.Delete(encodeID(a), mKey)
				}
			}
		}
		for _, a := range newChain {
			if !oldSet[a] {
				p.subLevel.Put(encodeID(a), mKey)
				if isAliasMember {
					p.subAlias.Put(encodeID(a), mKey)
				}
			}
		}
	}

	if p.alias.Has(idKey) {
		p.oneAlias.Delete(encodeID(oldParentID), idKey)
		p.oneAlias.Put(encodeID(newParentID), idKey)
	}

	oldEntry, err := p.lookupLocked(id)
	if err != nil {
		return err
	}
	if renaming {
		working := applyRDNAttributes(oldEntry, leafRDN, newRDN, deleteOldRdnAttr)
		if err := schema.NewValidator(p.registry).ValidateEntry(working); err != nil {
			return err
		}
		working.DN = newDN
		working.Replace("entryCSN", entry.NewTextValue(p.csnGen.Next(time.Now()).String()))
		p.deindexValues(id, oldEntry)
		p.indexValues(id, working)
		p.master.ReplaceUnique(idKey, p.encodeEntry(working))
	} else if err := p.overwriteDN(id, newDN); err != nil {
		return err
	}

	for _, member := range subtree {
		correctDN, err := p.entryDN(member)
		if err != nil {
			return err
		}
		if err := p.overwriteDN(member, correctDN); err != nil {
			return err
		}
	}
	return nil
}

func (p *Partition) ancestorChain(id ID) []ID {
	chain := []ID{id}
	cur := id
	for cur != RootID {
		next, ok := p.ancestorOf(cur)
		if !ok {
			break
		}
		chain = append(chain, next)
		cur = next
	}
	return chain
}

func toSet(ids []ID) map[ID]bool {
	out := make(map[ID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// subtreeIDs returns every transitive descendant of id, per the
// sub-level index's closure.
func (p *Partition) subtreeIDs(id ID) []ID {
	vals, _ := p.subLevel.Get(encodeID(id))
	out := make([]ID, 0, len(vals))
	for _, v := range vals {
		out = append(out, decodeID(v))
	}
	return out
}

// overwriteDN rewrites the DN field stored on member's master record,
// leaving attributes untouched; used when a move changes a descendant's
// effective DN without changing any attribute value.
func (p *Partition) overwriteDN(member ID, newDN dn.DN) error {
	e, err := p.lookupLocked(member)
	if err != nil {
		return err
	}
	if e.DN.Equal(newDN, dn.Comparator(p.registry)) {
		return nil
	}
	e.DN = newDN
	p.master.ReplaceUnique(encodeID(member), p.encodeEntry(e))
	return nil
}
