package search

import (
	"sort"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/filter"
	"github.com/obadir/oba/internal/partition"
	"github.com/obadir/oba/internal/schema"
)

// Engine executes Requests against one Partition, per spec.md §4.4.
type Engine struct {
	p        *partition.Partition
	registry *schema.Registry
}

// NewEngine constructs an Engine over p, using registry for filter
// normalization and evaluation.
func NewEngine(p *partition.Partition, registry *schema.Registry) *Engine {
	return &Engine{p: p, registry: registry}
}

// Result is one matched entry, already attribute-projected.
type Result struct {
	DN    dn.DN
	Entry *entry.Entry
}

// Search executes req, invoking visit for each matching entry in no
// particular order. It returns errs.KindSizeLimitExceeded or
// errs.KindTimeLimitExceeded if either limit is hit before the scope is
// exhausted; visit has already been called for every entry found up to
// that point, matching spec.md §8 "sizeLimit = 1 returns exactly one
// entry then raises sizeLimitExceeded".
func (eng *Engine) Search(req Request, visit func(Result) error) error {
	deadline := time.Time{}
	if req.TimeLimit > 0 {
		deadline = time.Now().Add(req.TimeLimit)
	}

	baseID, err := eng.resolveBase(req)
	if err != nil {
		return err
	}

	scope := eng.scopeIDs(baseID, req.Scope)
	scope = eng.expandAliases(scope, req)

	var normalized *filter.Filter
	if req.Filter != nil {
		normalized = filter.Normalize(req.Filter, eng.registry)
		normalized = filter.Optimize(normalized, eng.p)
	}

	candidates := scope
	if normalized != nil {
		if narrowed := eng.candidateIDs(normalized); narrowed != nil {
			candidates = intersectSorted(sortedCopy(scope), sortedCopy(narrowed))
		}
	}

	count := 0
	for _, id := range candidates {
		if req.SizeLimit > 0 && count >= req.SizeLimit {
			return errs.New(errs.KindSizeLimitExceeded, "size limit exceeded")
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return errs.New(errs.KindTimeLimitExceeded, "time limit exceeded")
		}

		e, err := eng.p.LookupByID(id)
		if err != nil {
			continue // index/master race within the read lock window; skip rather than fail the whole search
		}
		if normalized != nil && !filter.Evaluate(normalized, e, eng.registry) {
			continue
		}

		projected := projectAttributes(e, req.Attributes, eng.registry)
		if err := visit(Result{DN: e.DN, Entry: projected}); err != nil {
			return err
		}
		count++
	}
	return nil
}

// resolveBase resolves req.Base to an ID, substituting the aliased
// object when req.Deref is FindingBase or Always and the base itself is
// an alias, per spec.md §4.4 "Alias dereferencing".
func (eng *Engine) resolveBase(req Request) (partition.ID, error) {
	id, err := eng.p.Resolve(req.Base)
	if err != nil {
		return 0, err
	}
	if req.Deref == FindingBase || req.Deref == Always {
		for eng.p.IsAliasID(id) {
			target, err := eng.p.AliasTarget(id)
			if err != nil {
				return 0, errs.Wrap(errs.KindAliasDereferencingProblem, "alias target resolution failed", err)
			}
			id, err = eng.p.Resolve(target)
			if err != nil {
				return 0, errs.Wrap(errs.KindAliasDereferencingProblem, "alias target does not exist", err)
			}
		}
	}
	return id, nil
}

// scopeIDs enumerates the candidate universe for scope rooted at baseID.
func (eng *Engine) scopeIDs(baseID partition.ID, scope Scope) []partition.ID {
	switch scope {
	case BaseObject:
		return []partition.ID{baseID}
	case SingleLevel:
		return eng.p.OneLevelIDs(baseID)
	case WholeSubtree:
		ids := eng.p.SubtreeIDs(baseID)
		return append(ids, baseID)
	default:
		return nil
	}
}

// expandAliases applies IN_SEARCH/ALWAYS dereferencing: every alias
// within scope is resolved to its target, and the target is added to
// the candidate set if it falls within scope (spec.md §4.4 "IN_SEARCH:
// candidates that are aliases are resolved to their targets, and the
// targets are also included if in scope"). It uses the one-alias/
// sub-alias indexes to find aliases without a full scan.
func (eng *Engine) expandAliases(scope []partition.ID, req Request) []partition.ID {
	if req.Deref != InSearch && req.Deref != Always {
		return scope
	}
	inScope := make(map[partition.ID]bool, len(scope))
	for _, id := range scope {
		inScope[id] = true
	}
	var aliasIDs []partition.ID
	switch req.Scope {
	case SingleLevel:
		aliasIDs = eng.p.OneAliasIDs(mustResolve(eng, req.Base))
	case WholeSubtree:
		base := mustResolve(eng, req.Base)
		aliasIDs = append(eng.p.SubAliasIDs(base), eng.p.OneAliasIDs(base)...)
	}
	for _, aliasID := range aliasIDs {
		if !inScope[aliasID] {
			continue
		}
		targetDN, err := eng.p.AliasTarget(aliasID)
		if err != nil {
			continue
		}
		targetID, err := eng.p.Resolve(targetDN)
		if err != nil {
			continue
		}
		if inScope[targetID] && !contains(scope, targetID) {
			scope = append(scope, targetID)
		}
	}
	return scope
}

func mustResolve(eng *Engine, target dn.DN) partition.ID {
	id, _ := eng.p.Resolve(target)
	return id
}

// candidateIDs returns a safe superset of f's matches drawn from index
// lookups, or nil when f carries no leaf the index family can narrow
// (callers fall back to the full scope, post-filtered by Evaluate).
func (eng *Engine) candidateIDs(f *filter.Filter) []partition.ID {
	switch f.Type {
	case filter.Contradiction:
		return []partition.ID{}
	case filter.And:
		var narrowed [][]partition.ID
		for _, c := range f.Children {
			if ids := eng.candidateIDs(c); ids != nil {
				narrowed = append(narrowed, ids)
			}
		}
		if len(narrowed) == 0 {
			return nil
		}
		result := sortedCopy(narrowed[0])
		for _, ids := range narrowed[1:] {
			result = intersectSorted(result, sortedCopy(ids))
		}
		return result
	case filter.Or:
		union := map[partition.ID]bool{}
		for _, c := range f.Children {
			ids := eng.candidateIDs(c)
			if ids == nil {
				return nil // one unbounded branch makes the whole OR unbounded
			}
			for _, id := range ids {
				union[id] = true
			}
		}
		out := make([]partition.ID, 0, len(union))
		for id := range union {
			out = append(out, id)
		}
		return out
	case filter.Not:
		// spec.md §4.4 describes a scope-minus-child cursor; computing
		// that precisely needs the active scope, which this function
		// does not see. Leaving NOT unnarrowed falls back to a full
		// scope scan with Evaluate, which is correct, just less
		// selective than the scoped subtraction spec.md envisions.
		return nil
	case filter.Equality, filter.ApproxMatch:
		return eng.p.EqualityIDs(f.AttributeOID, f.Value)
	case filter.ExtensibleMatch:
		if f.MatchingRule != "" {
			return nil
		}
		return eng.p.EqualityIDs(f.AttributeOID, f.Value)
	case filter.Present:
		return eng.p.PresenceIDs(f.AttributeOID)
	case filter.Substring:
		if len(f.Sub.Initial) > 0 {
			return eng.p.PrefixIDs(f.AttributeOID, f.Sub.Initial)
		}
		return nil
	case filter.GreaterOrEqual:
		return eng.p.GreaterOrEqualIDs(f.AttributeOID, f.Value)
	case filter.LessOrEqual:
		return eng.p.LessOrEqualIDs(f.AttributeOID, f.Value)
	default:
		return nil
	}
}

func contains(ids []partition.ID, target partition.ID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func sortedCopy(ids []partition.ID) []partition.ID {
	out := append([]partition.ID{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// intersectSorted intersects two ascending-sorted, duplicate-free slices.
func intersectSorted(a, b []partition.ID) []partition.ID {
	out := make([]partition.ID, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// projectAttributes applies the `*`/`+`/`1.1` sentinel vocabulary and
// specific attribute identifiers, per spec.md §4.4 "Returned attributes".
func projectAttributes(e *entry.Entry, attrIds []string, registry *schema.Registry) *entry.Entry {
	if len(attrIds) == 0 {
		attrIds = []string{AllUserAttributes}
	}
	wantAllUser, wantAllOp, wantNone := false, false, false
	specific := make(map[string]bool, len(attrIds))
	for _, id := range attrIds {
		switch id {
		case AllUserAttributes:
			wantAllUser = true
		case AllOperationalAttrs:
			wantAllOp = true
		case NoAttributes:
			wantNone = true
		default:
			specific[lowerASCII(id)] = true
		}
	}
	out := entry.New(e.DN)
	if wantNone && !wantAllUser && !wantAllOp && len(specific) == 0 {
		return out
	}
	for _, name := range e.AttributeNames() {
		a := e.Get(name)
		operational := false
		if at := registry.AttributeType(name); at != nil {
			operational = at.IsOperational()
		}
		include := specific[lowerASCII(name)]
		if wantAllUser && !operational {
			include = true
		}
		if wantAllOp && operational {
			include = true
		}
		if include {
			out.Add(a.Name, a.Values...)
		}
	}
	return out
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
