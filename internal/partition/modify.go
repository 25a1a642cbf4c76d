package partition

import (
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/schema"
)

// Modify implements spec.md §4.3's Modify algorithm: apply mods to a
// clone, schema-check the result, and re-index the changed attributes.
func (p *Partition) Modify(target dn.DN, mods []entry.Modification) (*entry.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.resolve(target)
	if err != nil {
		return nil, err
	}
	oldEntry, err := p.lookupLocked(id)
	if err != nil {
		return nil, err
	}

	newEntry, err := entry.ApplyModifications(oldEntry, mods)
	if err != nil {
		return nil, err
	}
	if err := schema.NewValidator(p.registry).ValidateEntry(newEntry); err != nil {
		return nil, err
	}

	csn := p.csnGen.Next(time.Now())
	newEntry.Replace("entryCSN", entry.NewTextValue(csn.String()))

	idKey := encodeID(id)
	p.master.ReplaceUnique(idKey, p.encodeEntry(newEntry))

	p.deindexValues(id, oldEntry)
	p.indexValues(id, newEntry)

	return newEntry, nil
}
