package dn

import (
	"strings"

	"github.com/obadir/oba/internal/schema"
)

// Comparator builds the attribute-aware equality function DN.Equal,
// RDN.Equal, IsDescendantOf and IsAncestorOf need, backed by a schema
// Registry's per-attribute equality matching rules (spec.md §4.1).
func Comparator(registry *schema.Registry) func(attrType, a, b string) bool {
	return func(attrType, a, b string) bool {
		na := registry.NormalizeEquality(attrType, []byte(a))
		nb := registry.NormalizeEquality(attrType, []byte(b))
		return string(na) == string(nb)
	}
}

// Normalize renders the DN's schema-normalized form: every RDN atom's
// value run through its attribute's equality matching rule and the atoms
// within a multi-valued RDN sorted into a canonical order, so that two
// DNs denoting the same entry under different user-supplied case or
// ordering produce identical strings. This is the form stored in the
// Partition Engine's RDN and one-level indexes.
func Normalize(d DN, registry *schema.Registry) string {
	parts := make([]string, len(d.RDNs))
	for i, rdn := range d.RDNs {
		parts[i] = NormalizeRDN(rdn, registry)
	}
	return strings.Join(parts, ",")
}

// NormalizeRDN renders a single RDN's schema-normalized form, the key the
// Partition Engine's RDN index stores per level (spec.md §3 "RDN index").
func NormalizeRDN(r RDN, registry *schema.Registry) string {
	atoms := make([]string, len(r))
	for i, atv := range r {
		oid := registry.CanonicalOID(atv.Type)
		norm := registry.NormalizeEquality(atv.Type, []byte(atv.Value))
		atoms[i] = oid + "=" + string(norm)
	}
	// Sort so a multi-valued RDN normalizes the same regardless of the
	// order its atoms were written in.
	for i := 1; i < len(atoms); i++ {
		for j := i; j > 0 && atoms[j-1] > atoms[j]; j-- {
			atoms[j-1], atoms[j] = atoms[j], atoms[j-1]
		}
	}
	return strings.Join(atoms, "+")
}
