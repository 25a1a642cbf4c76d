package partition

import (
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// Rename implements spec.md §4.3's Rename algorithm: the entry keeps its
// parent but takes a new leaf RDN. The entry's UUID (and every
// descendant's UUID) is preserved since only the RDN index and the
// entry's own RDN-attribute values change.
func (p *Partition) Rename(target dn.DN, newRDN dn.RDN, deleteOldRdnAttr bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.resolve(target)
	if err != nil {
		return err
	}
	parent, hasParent := target.Parent()
	if !hasParent {
		return errs.New(errs.KindNamingViolation, "cannot rename the root DSE")
	}
	newDN := parent.AppendParent(newRDN)

	cmp := dn.Comparator(p.registry)
	sameDN := newDN.Equal(target, cmp)
	if !sameDN {
		if _, err := p.resolve(newDN); err == nil {
			return errs.New(errs.KindEntryAlreadyExists, "entry already exists: "+newDN.String())
		}
	}

	oldEntry, err := p.lookupLocked(id)
	if err != nil {
		return err
	}
	oldRDN, _ := target.RDNAt(0)

	parentID, err := p.resolve(parent)
	if err != nil {
		return err
	}

	working := applyRDNAttributes(oldEntry, oldRDN, newRDN, deleteOldRdnAttr)
	// Open question (spec.md §9): deleteOldRdnAttr=false with a differing
	// single-valued RDN attribute value is rejected here, caught by the
	// same single-value check ValidateEntry runs for any other attribute.
	if err := schema.NewValidator(p.registry).ValidateEntry(working); err != nil {
		return err
	}
	working.DN = newDN
	csn := p.csnGen.Next(time.Now())
	working.Replace("entryCSN", entry.NewTextValue(csn.String()))

	idKey := encodeID(id)
	oldNorm := dn.NormalizeRDN(oldRDN, p.registry)
	newNorm := dn.NormalizeRDN(newRDN, p.registry)

	p.rdnFwd.Delete(compositeKey(encodeID(parentID), []byte(oldNorm)), idKey)
	if err := p.rdnFwd.PutUnique(compositeKey(encodeID(parentID), []byte(newNorm)), idKey); err != nil {
		return errs.Wrap(errs.KindOperationsError, "rdn index write failed", err)
	}
	p.rdnRev.ReplaceUnique(idKey, compositeKey(encodeID(parentID), []byte(newRDN.String())))

	p.deindexValues(id, oldEntry)
	p.indexValues(id, working)
	p.master.ReplaceUnique(idKey, p.encodeEntry(working))

	return nil
}

func rdnAttrValueIn(rdn dn.RDN, atv dn.AttributeTypeAndValue) bool {
	for _, a := range rdn {
		if a.Type == atv.Type && a.Value == atv.Value {
			return true
		}
	}
	return false
}

// applyRDNAttributes returns a clone of e with oldRDN's atoms removed
// (when deleteOldRdnAttr asks for it and they are not shared with
// newRDN) and newRDN's atoms added, the attribute-level content change
// Rename and a renaming MoveAndRename both apply before reindexing.
func applyRDNAttributes(e *entry.Entry, oldRDN, newRDN dn.RDN, deleteOldRdnAttr bool) *entry.Entry {
	working := e.Clone()
	for _, atv := range oldRDN {
		if deleteOldRdnAttr && !rdnAttrValueIn(newRDN, atv) {
			working.Remove(atv.Type, entry.NewTextValue(atv.Value))
		}
	}
	for _, atv := range newRDN {
		v := entry.NewTextValue(atv.Value)
		if a := working.Get(atv.Type); a == nil || !a.HasValue(v) {
			working.Add(atv.Type, v)
		}
	}
	return working
}
