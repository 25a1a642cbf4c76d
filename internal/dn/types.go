package dn

import "strings"

// AttributeTypeAndValue is one "type=value" atom of an RDN. Value holds
// the decoded user value (escapes and '#'-hex forms already resolved);
// Raw preserves the exact bytes so octet-string comparisons and re-emission
// of binary-valued RDNs stay lossless.
type AttributeTypeAndValue struct {
	Type  string
	Value string
	Raw   []byte
}

// RDN is a (possibly multi-valued) relative distinguished name: one or
// more AttributeTypeAndValue atoms joined by '+', per RFC 4514 §2.
type RDN []AttributeTypeAndValue

// Equal compares two RDNs atom-for-atom using cmp to normalize each
// value (case, spacing, schema matching rules); the caller supplies cmp
// because normalization is schema-dependent (Comparator builds one from
// a schema registry).
func (r RDN) Equal(other RDN, cmp func(attrType, a, b string) bool) bool {
	if len(r) != len(other) {
		return false
	}
	used := make([]bool, len(other))
	for _, atv := range r {
		matched := false
		for i, o := range other {
			if used[i] {
				continue
			}
			if strings.EqualFold(atv.Type, o.Type) && cmp(atv.Type, atv.Value, o.Value) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// DN is a distinguished name: an ordered sequence of RDNs from leaf (index
// 0) to root (last index), per spec.md §4.1.
type DN struct {
	RDNs []RDN
}

// IsRoot reports whether the DN names the directory root (zero RDNs).
func (d DN) IsRoot() bool { return len(d.RDNs) == 0 }

// RDNAt returns the RDN at the given depth from the leaf, and whether
// that depth exists.
func (d DN) RDNAt(index int) (RDN, bool) {
	if index < 0 || index >= len(d.RDNs) {
		return nil, false
	}
	return d.RDNs[index], true
}

// Parent returns the DN with its leaf RDN removed, and false if d is
// already the root.
func (d DN) Parent() (DN, bool) {
	if len(d.RDNs) == 0 {
		return DN{}, false
	}
	return DN{RDNs: append([]RDN{}, d.RDNs[1:]...)}, true
}

// AppendParent returns a new DN formed by prefixing leaf to d, i.e. the
// DN one level deeper than d under the same parent, per spec.md §4.3
// "append(rdn)" used when composing a child's DN from its parent.
func (d DN) AppendParent(leaf RDN) DN {
	out := make([]RDN, 0, len(d.RDNs)+1)
	out = append(out, leaf)
	out = append(out, d.RDNs...)
	return DN{RDNs: out}
}

// Depth returns the number of RDNs in the DN.
func (d DN) Depth() int { return len(d.RDNs) }

// IsDescendantOf reports whether d is at or below ancestor in the tree,
// comparing RDNs with cmp (schema-aware equality per attribute type).
func (d DN) IsDescendantOf(ancestor DN, cmp func(attrType, a, b string) bool) bool {
	if len(ancestor.RDNs) > len(d.RDNs) {
		return false
	}
	offset := len(d.RDNs) - len(ancestor.RDNs)
	for i, rdn := range ancestor.RDNs {
		if !d.RDNs[i+offset].Equal(rdn, cmp) {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether d is strictly above descendant in the tree.
func (d DN) IsAncestorOf(descendant DN, cmp func(attrType, a, b string) bool) bool {
	return len(d.RDNs) < len(descendant.RDNs) && descendant.IsDescendantOf(d, cmp)
}

// Equal compares two DNs for structural and value equality under cmp.
func (d DN) Equal(other DN, cmp func(attrType, a, b string) bool) bool {
	if len(d.RDNs) != len(other.RDNs) {
		return false
	}
	for i := range d.RDNs {
		if !d.RDNs[i].Equal(other.RDNs[i], cmp) {
			return false
		}
	}
	return true
}
