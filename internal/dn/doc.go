// Package dn implements the Name Model: distinguished names and relative
// distinguished names parsed and rendered per RFC 4514, with schema-driven
// normalization for ordering and comparison independent of user-supplied
// case and spacing.
//
// Distilled from the teacher's internal/storage/radix/dn.go flat
// string-splitting helper, generalized into a typed RDN/DN model that
// understands multi-valued RDNs, attribute-value escaping and the
// '#'-prefixed hex (BER) value form.
package dn
