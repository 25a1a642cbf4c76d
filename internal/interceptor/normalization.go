package interceptor

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/schema"
)

// normalizationStage is the first stage of the chain: it rewrites every
// attribute type name an operation carries to its schema-canonical
// spelling (e.g. "CN" -> "cn", "2.5.4.4" -> "sn") before any later stage
// compares or stores it, generalized from the teacher's acl.Matcher's
// NormalizeDN (case/whitespace folding on string DNs) into this repo's
// typed dn.DN and entry.Entry machinery. It does not re-derive the
// Partition Engine's own index-key normalization (dn.Normalize,
// registry.NormalizeEquality) — those already run, consistently, inside
// internal/partition and internal/search on every lookup; this stage's
// job is purely to make what later interceptor stages and logs see
// readable and canonical, not to duplicate indexing work.
type normalizationStage struct {
	registry *schema.Registry
}

// NewNormalizationStage constructs the Normalization interceptor.
func NewNormalizationStage(registry *schema.Registry) Interceptor {
	return &normalizationStage{registry: registry}
}

func (s *normalizationStage) Name() string { return "normalization" }

func (s *normalizationStage) Handle(ctx *OperationContext, next Next) error {
	ctx.Target = s.canonicalDN(ctx.Target)
	if ctx.HasNewParent {
		ctx.NewParent = s.canonicalDN(ctx.NewParent)
	}
	ctx.NewRDN = s.canonicalRDN(ctx.NewRDN)

	if ctx.NewEntry != nil {
		ctx.NewEntry = s.canonicalEntry(ctx.NewEntry)
	}
	for i, mod := range ctx.Mods {
		ctx.Mods[i].Attribute = s.canonicalName(mod.Attribute)
	}
	if ctx.CompareAttr != "" {
		ctx.CompareAttr = s.canonicalName(ctx.CompareAttr)
	}

	attrs := ctx.SearchRequest.Attributes
	for i, name := range attrs {
		switch name {
		case "*", "+", "1.1":
			continue
		default:
			attrs[i] = s.canonicalName(name)
		}
	}

	return next()
}

func (s *normalizationStage) canonicalName(name string) string {
	if at := s.registry.AttributeType(name); at != nil {
		return at.Name
	}
	return name
}

func (s *normalizationStage) canonicalDN(d dn.DN) dn.DN {
	if d.IsRoot() {
		return d
	}
	out := make([]dn.RDN, len(d.RDNs))
	for i, r := range d.RDNs {
		out[i] = s.canonicalRDN(r)
	}
	return dn.DN{RDNs: out}
}

func (s *normalizationStage) canonicalRDN(r dn.RDN) dn.RDN {
	if len(r) == 0 {
		return r
	}
	out := make(dn.RDN, len(r))
	for i, atv := range r {
		atv.Type = s.canonicalName(atv.Type)
		out[i] = atv
	}
	return out
}

func (s *normalizationStage) canonicalEntry(e *entry.Entry) *entry.Entry {
	renamed := entry.New(e.DN)
	for _, name := range e.AttributeNames() {
		a := e.Get(name)
		renamed.Add(s.canonicalName(name), a.Values...)
	}
	return renamed
}
