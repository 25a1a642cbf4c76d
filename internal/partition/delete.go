package partition

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
)

// Delete implements spec.md §4.3's Delete algorithm: a non-leaf entry is
// rejected outright; otherwise every index insertion Add performed is
// reversed step for step before the master record is removed.
func (p *Partition) Delete(target dn.DN) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.resolve(target)
	if err != nil {
		return err
	}
	if children, ok := p.oneLevel.Get(encodeID(id)); ok && len(children) > 0 {
		return errs.New(errs.KindNotAllowedOnNonLeaf, "entry has children: "+target.String())
	}

	e, err := p.lookupLocked(id)
	if err != nil {
		return err
	}

	parentID, hasParent := p.ancestorOf(id)
	if !hasParent {
		parentID = RootID
	}

	idKey := encodeID(id)
	leafRDN, _ := target.RDNAt(0)
	normRDN := dn.NormalizeRDN(leafRDN, p.registry)

	p.rdnFwd.Delete(compositeKey(encodeID(parentID), []byte(normRDN)), idKey)
	p.rdnRev.DeleteKey(idKey)
	p.oneLevel.Delete(encodeID(parentID), idKey)

	for ancestor := parentID; ; {
		p.subLevel.Delete(encodeID(ancestor), idKey)
		if ancestor == RootID {
			break
		}
		next, ok := p.ancestorOf(ancestor)
		if !ok {
			break
		}
		ancestor = next
	}

	p.deindexValues(id, e)

	if u := e.Get("entryUUID"); u != nil && len(u.Values) > 0 {
		p.uuidIndex.Delete([]byte(u.Values[0].String()), idKey)
	}

	if p.alias.Has(idKey) {
		p.alias.DeleteKey(idKey)
		p.oneAlias.Delete(encodeID(parentID), idKey)
		for ancestor := parentID; ; {
			p.subAlias.Delete(encodeID(ancestor), idKey)
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

	p.master.DeleteKey(idKey)
	return nil
}
