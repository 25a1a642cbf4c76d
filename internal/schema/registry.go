package schema

import "strings"

// Registry is the Schema Registry: a copy-on-write catalog resolved by
// OID or by any registered name, case-insensitively, per spec.md §4.1.
// A nil *Registry is valid and behaves as an empty catalog, so packages
// that only sometimes run under schema control (tests, bootstrap) need
// not special-case it.
type Registry struct {
	objectClasses  map[string]*ObjectClass
	attributeTypes map[string]*AttributeType
	syntaxes       map[string]*Syntax
	matchingRules  map[string]*MatchingRule
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		objectClasses:  make(map[string]*ObjectClass),
		attributeTypes: make(map[string]*AttributeType),
		syntaxes:       make(map[string]*Syntax),
		matchingRules:  make(map[string]*MatchingRule),
	}
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// clone makes a shallow copy of the four catalogs so a write can mutate
// the copy while concurrent readers keep using the original maps
// (spec.md §5 copy-on-write).
func (r *Registry) clone() *Registry {
	if r == nil {
		return New()
	}
	c := &Registry{
		objectClasses:  make(map[string]*ObjectClass, len(r.objectClasses)),
		attributeTypes: make(map[string]*AttributeType, len(r.attributeTypes)),
		syntaxes:       make(map[string]*Syntax, len(r.syntaxes)),
		matchingRules:  make(map[string]*MatchingRule, len(r.matchingRules)),
	}
	for k, v := range r.objectClasses {
		c.objectClasses[k] = v
	}
	for k, v := range r.attributeTypes {
		c.attributeTypes[k] = v
	}
	for k, v := range r.syntaxes {
		c.syntaxes[k] = v
	}
	for k, v := range r.matchingRules {
		c.matchingRules[k] = v
	}
	return c
}

// WithAttributeType returns a new Registry with at registered under its
// OID and every name. The receiver is left untouched.
func (r *Registry) WithAttributeType(at *AttributeType) *Registry {
	c := r.clone()
	if at.OID != "" {
		c.attributeTypes[key(at.OID)] = at
	}
	names := at.Names
	if len(names) == 0 && at.Name != "" {
		names = []string{at.Name}
	}
	for _, n := range names {
		c.attributeTypes[key(n)] = at
	}
	return c
}

// WithObjectClass returns a new Registry with oc registered under its
// OID and every name.
func (r *Registry) WithObjectClass(oc *ObjectClass) *Registry {
	c := r.clone()
	if oc.OID != "" {
		c.objectClasses[key(oc.OID)] = oc
	}
	names := oc.Names
	if len(names) == 0 && oc.Name != "" {
		names = []string{oc.Name}
	}
	for _, n := range names {
		c.objectClasses[key(n)] = oc
	}
	return c
}

// WithSyntax returns a new Registry with syn registered under its OID.
func (r *Registry) WithSyntax(syn *Syntax) *Registry {
	c := r.clone()
	if syn.OID != "" {
		c.syntaxes[key(syn.OID)] = syn
	}
	return c
}

// WithMatchingRule returns a new Registry with mr registered under its
// OID and every name.
func (r *Registry) WithMatchingRule(mr *MatchingRule) *Registry {
	c := r.clone()
	if mr.OID != "" {
		c.matchingRules[key(mr.OID)] = mr
	}
	names := mr.Names
	if len(names) == 0 && mr.Name != "" {
		names = []string{mr.Name}
	}
	for _, n := range names {
		c.matchingRules[key(n)] = mr
	}
	return c
}

// AttributeType resolves a user-supplied attribute identifier (name or
// OID) to its registered definition. Returns nil if unregistered.
func (r *Registry) AttributeType(nameOrOID string) *AttributeType {
	if r == nil {
		return nil
	}
	return r.attributeTypes[key(nameOrOID)]
}

// ObjectClass resolves a user-supplied object class identifier.
func (r *Registry) ObjectClass(nameOrOID string) *ObjectClass {
	if r == nil {
		return nil
	}
	return r.objectClasses[key(nameOrOID)]
}

// Syntax resolves a syntax OID.
func (r *Registry) Syntax(oid string) *Syntax {
	if r == nil {
		return nil
	}
	return r.syntaxes[key(oid)]
}

// MatchingRule resolves a matching rule name or OID.
func (r *Registry) MatchingRule(nameOrOID string) *MatchingRule {
	if r == nil {
		return nil
	}
	return r.matchingRules[key(nameOrOID)]
}

// CanonicalOID resolves a user-supplied attribute identifier to its
// canonical OID, per spec.md §4.1 "the attribute type is resolved to its
// OID via the schema". Falls back to the lower-cased identifier itself
// when the attribute is unregistered, so unknown attributes still get a
// stable key rather than aborting resolution outright; callers that must
// reject unknown attributes check AttributeType(...) == nil first.
func (r *Registry) CanonicalOID(nameOrOID string) string {
	if at := r.AttributeType(nameOrOID); at != nil && at.OID != "" {
		return at.OID
	}
	return key(nameOrOID)
}

// rule walks the Superior chain to find the nearest matching
// rule of the requested kind, per spec.md §4.1 "superior type (for
// inheritance of matching rules)".
func (r *Registry) rule(at *AttributeType, pick func(*AttributeType) string) *MatchingRule {
	seen := map[string]bool{}
	for at != nil {
		if name := pick(at); name != "" {
			return r.MatchingRule(name)
		}
		if at.Superior == "" || seen[key(at.Superior)] {
			return nil
		}
		seen[key(at.Superior)] = true
		at = r.AttributeType(at.Superior)
	}
	return nil
}

// EqualityRule returns the effective equality matching rule for an
// attribute, resolving through the superior chain.
func (r *Registry) EqualityRule(nameOrOID string) *MatchingRule {
	return r.rule(r.AttributeType(nameOrOID), func(at *AttributeType) string { return at.Equality })
}

// OrderingRule returns the effective ordering matching rule.
func (r *Registry) OrderingRule(nameOrOID string) *MatchingRule {
	return r.rule(r.AttributeType(nameOrOID), func(at *AttributeType) string { return at.Ordering })
}

// SubstringRule returns the effective substring matching rule.
func (r *Registry) SubstringRule(nameOrOID string) *MatchingRule {
	return r.rule(r.AttributeType(nameOrOID), func(at *AttributeType) string { return at.Substring })
}

// NormalizeEquality normalizes raw under an attribute's equality
// matching rule (or returns raw unchanged if none is registered).
func (r *Registry) NormalizeEquality(nameOrOID string, raw []byte) []byte {
	return r.EqualityRule(nameOrOID).normalize(raw)
}

// NormalizeOrdering normalizes raw under an attribute's ordering
// matching rule, falling back to the equality rule.
func (r *Registry) NormalizeOrdering(nameOrOID string, raw []byte) []byte {
	if mr := r.OrderingRule(nameOrOID); mr != nil {
		return mr.normalize(raw)
	}
	return r.NormalizeEquality(nameOrOID, raw)
}

// CompareOrdering orders two raw values under an attribute's effective
// ordering (or equality, as a fallback) matching rule.
func (r *Registry) CompareOrdering(nameOrOID string, a, b []byte) int {
	mr := r.OrderingRule(nameOrOID)
	if mr == nil {
		mr = r.EqualityRule(nameOrOID)
	}
	na, nb := mr.normalize(a), mr.normalize(b)
	return mr.compare(na, nb)
}

// IsBinary reports whether an attribute's syntax compares as an octet
// string rather than a directory string, per spec.md §3 "Binary-valued
// attributes compare by octet string."
func (r *Registry) IsBinary(nameOrOID string) bool {
	at := r.AttributeType(nameOrOID)
	if at == nil {
		return false
	}
	syn := r.Syntax(at.Syntax)
	return syn != nil && syn.Binary
}

// allAttrs walks an object class's Superiors chain collecting Must/May
// attribute names, used by EffectiveMust/EffectiveMay.
func (r *Registry) allAttrs(nameOrOID string, pick func(*ObjectClass) []string, seen map[string]bool, out map[string]bool) {
	oc := r.ObjectClass(nameOrOID)
	if oc == nil || seen[key(nameOrOID)] {
		return
	}
	seen[key(nameOrOID)] = true
	for _, a := range pick(oc) {
		out[key(a)] = true
	}
	for _, sup := range oc.Superiors {
		r.allAttrs(sup, pick, seen, out)
	}
}

// EffectiveMust returns the full set of mandatory attribute names for an
// object class, including those inherited from Superiors.
func (r *Registry) EffectiveMust(nameOrOID string) map[string]bool {
	out := map[string]bool{}
	r.allAttrs(nameOrOID, func(oc *ObjectClass) []string { return oc.Must }, map[string]bool{}, out)
	return out
}

// EffectiveMay returns the full set of optional attribute names for an
// object class, including those inherited from Superiors.
func (r *Registry) EffectiveMay(nameOrOID string) map[string]bool {
	out := map[string]bool{}
	r.allAttrs(nameOrOID, func(oc *ObjectClass) []string { return oc.May }, map[string]bool{}, out)
	return out
}
