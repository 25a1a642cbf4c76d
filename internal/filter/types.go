// Package filter implements the Search Engine's filter grammar and tree
// (spec.md §4.4): RFC 4515 textual filters parsed into a tree of nodes,
// a schema-normalization visitor, and a selectivity-estimating optimizer
// whose output the Search Engine's cursor builder (internal/search)
// composes into index cursors.
//
// Distilled from the teacher's internal/filter package (a flat
// Filter/QueryPlan pair wired directly to a single storage.IndexManager),
// generalized to carry schema-normalized values, extensible-match
// matching-rule references, and optimizer annotations (Estimate,
// UseIndex) instead of eagerly compiling a single-partition query plan.
package filter

// Type identifies one RFC 4515 filter node kind.
type Type int

const (
	And Type = iota
	Or
	Not
	Equality
	Substring
	GreaterOrEqual
	LessOrEqual
	Present
	ApproxMatch
	ExtensibleMatch
	// Contradiction is substituted by the normalization visitor for a
	// leaf that names an undefined attribute type, per spec.md §4.4
	// "drop undefined-attribute leaves (substitute a contradiction that
	// yields the empty set)" — it matches nothing and costs nothing to
	// evaluate.
	Contradiction
)

func (t Type) String() string {
	switch t {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	case Equality:
		return "EQUALITY"
	case Substring:
		return "SUBSTRING"
	case GreaterOrEqual:
		return "GREATER_OR_EQUAL"
	case LessOrEqual:
		return "LESS_OR_EQUAL"
	case Present:
		return "PRESENT"
	case ApproxMatch:
		return "APPROX_MATCH"
	case ExtensibleMatch:
		return "EXTENSIBLE_MATCH"
	case Contradiction:
		return "CONTRADICTION"
	default:
		return "UNKNOWN"
	}
}

// Substrings holds the decomposed components of a substring filter:
// value = initial "*" any[0] "*" any[1] ... "*" final, any component
// empty/absent if not present in the original filter text.
type Substrings struct {
	Initial []byte
	Any     [][]byte
	Final   []byte
}

// Filter is one node of a parsed (and, after Normalize/Optimize,
// annotated) LDAP search filter tree, per spec.md §4.4.
type Filter struct {
	Type Type

	// Leaf fields. Attribute is the user-supplied identifier until
	// Normalize resolves it; AttributeOID holds the canonical OID once
	// normalized. Value is the (post-normalization) comparison value for
	// Equality/GreaterOrEqual/LessOrEqual/ApproxMatch.
	Attribute    string
	AttributeOID string
	Value        []byte
	Sub          *Substrings

	// ExtensibleMatch-only fields, per RFC 4515 §3
	// "attr:matchingRule:=value" / "attr:dn:matchingRule:=value".
	MatchingRule string
	DNAttributes bool

	// Composite fields.
	Children []*Filter // And / Or
	Child    *Filter   // Not

	// Optimizer annotations (spec.md §4.4 "Optimizer"), set by Optimize
	// and consumed by the Search Engine's cursor builder.
	Estimate int64
	UseIndex bool
}

// NewAnd, NewOr, NewNot and the leaf constructors build unnormalized
// trees, as the parser produces; tests and programmatic callers (LDIF
// subtree-specification filters, replication filters) use these too.

func NewAnd(children ...*Filter) *Filter { return &Filter{Type: And, Children: children} }
func NewOr(children ...*Filter) *Filter  { return &Filter{Type: Or, Children: children} }
func NewNot(child *Filter) *Filter       { return &Filter{Type: Not, Child: child} }

func NewEquality(attr string, value []byte) *Filter {
	return &Filter{Type: Equality, Attribute: attr, Value: value}
}

func NewPresent(attr string) *Filter { return &Filter{Type: Present, Attribute: attr} }

func NewSubstring(attr string, sub *Substrings) *Filter {
	return &Filter{Type: Substring, Attribute: attr, Sub: sub}
}

func NewGreaterOrEqual(attr string, value []byte) *Filter {
	return &Filter{Type: GreaterOrEqual, Attribute: attr, Value: value}
}

func NewLessOrEqual(attr string, value []byte) *Filter {
	return &Filter{Type: LessOrEqual, Attribute: attr, Value: value}
}

func NewApproxMatch(attr string, value []byte) *Filter {
	return &Filter{Type: ApproxMatch, Attribute: attr, Value: value}
}

func NewExtensibleMatch(attr, matchingRule string, dnAttrs bool, value []byte) *Filter {
	return &Filter{Type: ExtensibleMatch, Attribute: attr, MatchingRule: matchingRule, DNAttributes: dnAttrs, Value: value}
}

// contradiction builds the always-false leaf Normalize substitutes for
// an undefined attribute type.
func contradiction() *Filter { return &Filter{Type: Contradiction} }

// effectiveAttribute returns the OID form once normalized, falling back
// to the raw user-supplied identifier for an unnormalized tree (tests
// that evaluate directly without a schema).
func (f *Filter) effectiveAttribute() string {
	if f.AttributeOID != "" {
		return f.AttributeOID
	}
	return f.Attribute
}
