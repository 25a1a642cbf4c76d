package schema

import (
	"strings"
	"unicode"
)

// The well-known RFC 4517 matching rule OIDs the bootstrap schema wires
// up; kept as names too since most LDIF schema files and every test in
// this repo refer to attributes by name rather than OID.
const (
	CaseIgnoreMatchOID        = "2.5.13.2"
	CaseExactMatchOID         = "2.5.13.5"
	CaseIgnoreOrderingOID     = "2.5.13.3"
	NumericStringMatchOID     = "2.5.13.8"
	OctetStringMatchOID       = "2.5.13.17"
	DistinguishedNameMatchOID = "2.5.13.1"
	CaseIgnoreSubstringOID    = "2.5.13.4"
)

// foldSpace collapses runs of whitespace to a single space and trims the
// ends, the "insignificant space handling" RFC 4518 requires for
// directory-string matching rules.
func foldSpace(s string) string {
	var b strings.Builder
	lastSpace := true // drop leading space
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	out := b.String()
	return strings.TrimSuffix(out, " ")
}

// caseIgnoreNormalize implements caseIgnoreMatch: case-fold plus
// insignificant-space collapse.
func caseIgnoreNormalize(raw []byte) []byte {
	return []byte(strings.ToLower(foldSpace(string(raw))))
}

// caseExactNormalize implements caseExactMatch: case preserved, space
// collapsed.
func caseExactNormalize(raw []byte) []byte {
	return []byte(foldSpace(string(raw)))
}

// numericStringNormalize implements numericStringMatch: strip everything
// that is not a digit.
func numericStringNormalize(raw []byte) []byte {
	var b strings.Builder
	for _, r := range string(raw) {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return []byte(b.String())
}

// octetStringNormalize implements octetStringMatch: binary identity, no
// case-folding or space collapse, per spec.md §4.1 "case-preserve for
// binaries."
func octetStringNormalize(raw []byte) []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// bootstrapMatchingRules returns the registrations for the small set of
// matching rules the bootstrap attribute types reference.
func bootstrapMatchingRules() []*MatchingRule {
	return []*MatchingRule{
		{OID: CaseIgnoreMatchOID, Name: "caseIgnoreMatch", Normalize: caseIgnoreNormalize},
		{OID: CaseExactMatchOID, Name: "caseExactMatch", Normalize: caseExactNormalize},
		{OID: CaseIgnoreOrderingOID, Name: "caseIgnoreOrderingMatch", Normalize: caseIgnoreNormalize,
			Compare: func(a, b []byte) int { return strings.Compare(string(a), string(b)) }},
		{OID: CaseIgnoreSubstringOID, Name: "caseIgnoreSubstringsMatch", Normalize: caseIgnoreNormalize},
		{OID: NumericStringMatchOID, Name: "numericStringMatch", Normalize: numericStringNormalize},
		{OID: OctetStringMatchOID, Name: "octetStringMatch", Normalize: octetStringNormalize},
		{OID: DistinguishedNameMatchOID, Name: "distinguishedNameMatch", Normalize: caseIgnoreNormalize},
	}
}
