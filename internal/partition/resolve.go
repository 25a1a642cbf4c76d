package partition

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
)

// resolve walks the RDN index from the partition's virtual root (ID 0)
// down to target, per spec.md §3 "DN-to-ID resolution without scanning".
// It does not hold p.mu; callers take the appropriate lock first.
func (p *Partition) resolve(target dn.DN) (ID, error) {
	cmp := dn.Comparator(p.registry)
	if !target.Equal(p.Suffix, cmp) && !target.IsDescendantOf(p.Suffix, cmp) {
		return 0, errs.New(errs.KindNoSuchObject, "dn is not within this partition's suffix")
	}
	id := RootID
	resolved := dn.DN{}
	for i := target.Depth() - 1; i >= 0; i-- {
		rdn, _ := target.RDNAt(i)
		key := compositeKey(encodeID(id), []byte(dn.NormalizeRDN(rdn, p.registry)))
		child, ok := p.rdnFwd.GetOne(key)
		if !ok {
			return 0, errs.New(errs.KindNoSuchObject, "no such entry: "+target.String()).WithMatchedDN(resolved.String())
		}
		id = decodeID(child)
		resolved = resolved.AppendParent(rdn)
	}
	return id, nil
}

// Resolve is the exported, lock-held form of resolve, used by callers
// outside this package (the Search Engine's cursor builder resolving a
// search base, the Partition Nexus routing by suffix).
func (p *Partition) Resolve(target dn.DN) (ID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolve(target)
}

func (p *Partition) entryDN(id ID) (dn.DN, error) {
	val, ok := p.rdnRev.GetOne(encodeID(id))
	if !ok {
		if id == RootID {
			return dn.DN{}, nil
		}
		return dn.DN{}, errs.New(errs.KindNoSuchObject, "dangling id in rdn.rev index")
	}
	parentBytes := val[:8]
	rdnText := val[9:]
	rdn, err := dn.Parse(string(rdnText))
	if err != nil {
		return dn.DN{}, err
	}
	if len(rdn.RDNs) != 1 {
		return dn.DN{}, errs.New(errs.KindOperationsError, "corrupt rdn.rev entry")
	}
	parentDN, err := p.entryDN(decodeID(parentBytes))
	if err != nil {
		return dn.DN{}, err
	}
	return parentDN.AppendParent(rdn.RDNs[0]), nil
}
