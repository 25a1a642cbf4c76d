package partition

import (
	"github.com/obadir/oba/internal/btree"
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
)

var errAliasNotFound = errs.New(errs.KindAliasProblem, "not an alias")

// These methods expose read-only index access for the Search Engine's
// cursor builder (internal/search), which composes over a Partition's
// indexes without this package importing internal/search (the same
// cycle-avoidance internal/filter.CardinalityEstimator already follows).

// OneLevelIDs returns the IDs of id's immediate children.
func (p *Partition) OneLevelIDs(id ID) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals, _ := p.oneLevel.Get(encodeID(id))
	return decodeIDs(vals)
}

// SubtreeIDs returns every transitive descendant of id.
func (p *Partition) SubtreeIDs(id ID) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subtreeIDs(id)
}

// IsAliasID reports whether id names an alias entry.
func (p *Partition) IsAliasID(id ID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alias.Has(encodeID(id))
}

// AliasTarget returns the DN an alias entry points to.
func (p *Partition) AliasTarget(id ID) (dn.DN, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.alias.GetOne(encodeID(id))
	if !ok {
		return dn.DN{}, errAliasNotFound
	}
	return dn.Parse(string(val))
}

// OneAliasIDs returns the immediate children of id that are aliases.
func (p *Partition) OneAliasIDs(id ID) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals, _ := p.oneAlias.Get(encodeID(id))
	return decodeIDs(vals)
}

// SubAliasIDs returns every transitive descendant of id that is an alias.
func (p *Partition) SubAliasIDs(id ID) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals, _ := p.subAlias.Get(encodeID(id))
	return decodeIDs(vals)
}

// EqualityIDs returns every ID whose attrOID attribute carries normValue,
// per the per-attribute forward user index.
func (p *Partition) EqualityIDs(attrOID string, normValue []byte) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals, _ := p.userFwd.Get(compositeKey([]byte(attrOID), normValue))
	return decodeIDs(vals)
}

// PresenceIDs returns every ID with any value of attrOID.
func (p *Partition) PresenceIDs(attrOID string) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vals, _ := p.presence.Get([]byte(attrOID))
	return decodeIDs(vals)
}

// PrefixIDs returns every ID whose attrOID attribute carries a value
// normalizing to a string with the given prefix, seeding a substring
// filter's initial literal per spec.md §4.4 "Cursor Builder".
func (p *Partition) PrefixIDs(attrOID string, prefix []byte) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cur := p.userFwd.PrefixCursor(compositeKey([]byte(attrOID), prefix))
	return idsFromCursor(cur)
}

// GreaterOrEqualIDs returns every ID whose attrOID attribute carries a
// value ordering at or above value, within attrOID's own key range.
func (p *Partition) GreaterOrEqualIDs(attrOID string, value []byte) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	start := compositeKey([]byte(attrOID), value)
	end := oidUpperBound(attrOID)
	cur := p.userFwd.RangeCursor(start, end, false)
	return idsFromCursor(cur)
}

// LessOrEqualIDs returns every ID whose attrOID attribute carries a value
// ordering at or below value, within attrOID's own key range.
func (p *Partition) LessOrEqualIDs(attrOID string, value []byte) []ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	start := oidLowerBound(attrOID)
	end := compositeKey([]byte(attrOID), value)
	cur := p.userFwd.RangeCursor(start, end, true)
	return idsFromCursor(cur)
}

// DNOf returns id's current DN, reconstructed from live index state.
func (p *Partition) DNOf(id ID) (dn.DN, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entryDN(id)
}

func oidLowerBound(attrOID string) []byte {
	return append(append([]byte{}, []byte(attrOID)...), sep)
}

func oidUpperBound(attrOID string) []byte {
	return append(append([]byte{}, []byte(attrOID)...), sep+1)
}

func decodeIDs(vals [][]byte) []ID {
	out := make([]ID, 0, len(vals))
	for _, v := range vals {
		out = append(out, decodeID(v))
	}
	return out
}

func idsFromCursor(cur *btree.Cursor) []ID {
	var out []ID
	for {
		_, value, ok := cur.Next()
		if !ok {
			break
		}
		out = append(out, decodeID(value))
	}
	return out
}
