package filter

import "github.com/obadir/oba/internal/schema"

// Normalize walks f, resolving every leaf's attribute identifier to its
// canonical OID and running its comparison value through the
// appropriate matching rule, per spec.md §4.4 "Normalization visitor".
// A leaf naming an attribute the registry has never heard of is
// replaced by a Contradiction node rather than erroring, matching
// spec.md's "drop undefined-attribute leaves (substitute a contradiction
// that yields the empty set)".
func Normalize(f *Filter, registry *schema.Registry) *Filter {
	if f == nil {
		return nil
	}
	switch f.Type {
	case And, Or:
		children := make([]*Filter, len(f.Children))
		for i, c := range f.Children {
			children[i] = Normalize(c, registry)
		}
		return &Filter{Type: f.Type, Children: children}
	case Not:
		return NewNot(Normalize(f.Child, registry))
	case Contradiction:
		return f
	default:
		return normalizeLeaf(f, registry)
	}
}

func normalizeLeaf(f *Filter, registry *schema.Registry) *Filter {
	at := registry.AttributeType(f.Attribute)
	if at == nil && f.Type != ExtensibleMatch {
		return contradiction()
	}
	oid := f.Attribute
	if at != nil {
		oid = at.OID
	}
	out := &Filter{Type: f.Type, Attribute: f.Attribute, AttributeOID: oid, MatchingRule: f.MatchingRule, DNAttributes: f.DNAttributes}
	switch f.Type {
	case Equality, ExtensibleMatch:
		out.Value = registry.NormalizeEquality(f.Attribute, f.Value)
	case GreaterOrEqual, LessOrEqual:
		out.Value = registry.NormalizeOrdering(f.Attribute, f.Value)
	case ApproxMatch:
		out.Value = registry.NormalizeEquality(f.Attribute, f.Value)
	case Present:
		// no value to normalize
	case Substring:
		out.Sub = &Substrings{
			Initial: registry.NormalizeEquality(f.Attribute, f.Sub.Initial),
			Final:   registry.NormalizeEquality(f.Attribute, f.Sub.Final),
		}
		for _, part := range f.Sub.Any {
			out.Sub.Any = append(out.Sub.Any, registry.NormalizeEquality(f.Attribute, part))
		}
	}
	return out
}
