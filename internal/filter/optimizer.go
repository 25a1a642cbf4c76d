package filter

// CardinalityEstimator supplies the index cardinalities the optimizer
// needs to rank filter children by selectivity, per spec.md §4.4
// "Optimizer". internal/partition's indexes satisfy this without the
// filter package needing to import internal/partition (which itself
// will import filter's Evaluate for full-scan post-filtering), avoiding
// an import cycle.
type CardinalityEstimator interface {
	// Universe returns the total candidate count the optimizer assumes
	// for NOT nodes (|universe| - child), typically the partition's
	// entry count within the search scope.
	Universe() int64
	// Presence returns the size of attrOID's presence index.
	Presence(attrOID string) int64
	// Equality returns the size of attrOID's forward user index at
	// normValue, used to estimate an equality leaf.
	Equality(attrOID string, normValue []byte) int64
}

// Optimize annotates f (already Normalize'd) with Estimate and UseIndex
// per spec.md §4.4: leaves get a cardinality estimate and an
// index-availability flag; AND sorts its children ascending by estimate
// (most selective first); OR sums child estimates; NOT estimates as
// |universe| minus its child's estimate. The input tree is not mutated;
// Optimize returns a new, annotated tree (AND's children are reordered,
// so identity-preserving mutation would be observable and surprising to
// a caller still holding the original tree).
func Optimize(f *Filter, est CardinalityEstimator) *Filter {
	if f == nil {
		return nil
	}
	switch f.Type {
	case And:
		children := make([]*Filter, len(f.Children))
		for i, c := range f.Children {
			children[i] = Optimize(c, est)
		}
		sortByEstimate(children)
		out := &Filter{Type: And, Children: children}
		if len(children) > 0 {
			out.Estimate = children[0].Estimate // AND is bounded by its most selective child
			out.UseIndex = children[0].UseIndex
		}
		return out
	case Or:
		children := make([]*Filter, len(f.Children))
		var sum int64
		allIndexed := true
		for i, c := range f.Children {
			children[i] = Optimize(c, est)
			sum += children[i].Estimate
			allIndexed = allIndexed && children[i].UseIndex
		}
		return &Filter{Type: Or, Children: children, Estimate: sum, UseIndex: allIndexed}
	case Not:
		child := Optimize(f.Child, est)
		estimate := est.Universe() - child.Estimate
		if estimate < 0 {
			estimate = 0
		}
		return &Filter{Type: Not, Child: child, Estimate: estimate}
	case Contradiction:
		return &Filter{Type: Contradiction, Estimate: 0, UseIndex: true}
	default:
		return optimizeLeaf(f, est)
	}
}

func optimizeLeaf(f *Filter, est CardinalityEstimator) *Filter {
	out := *f
	switch f.Type {
	case Equality, ExtensibleMatch:
		out.Estimate = est.Equality(f.effectiveAttribute(), f.Value)
		out.UseIndex = true
	case Present:
		out.Estimate = est.Presence(f.effectiveAttribute())
		out.UseIndex = true
	case Substring:
		if len(f.Sub.Initial) > 0 {
			// A literal prefix narrows the user index's ordered scan,
			// but it's still a range, not a point lookup — bias the
			// estimate down from a full scan without claiming
			// equality-grade selectivity.
			out.Estimate = est.Universe() / 4
			out.UseIndex = true
		} else {
			out.Estimate = est.Universe()
			out.UseIndex = false
		}
	case GreaterOrEqual, LessOrEqual:
		out.Estimate = est.Universe() / 2
		out.UseIndex = true
	default: // ApproxMatch: no dedicated index, per spec.md's index family
		out.Estimate = est.Universe()
		out.UseIndex = false
	}
	return &out
}

func sortByEstimate(fs []*Filter) {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && fs[j-1].Estimate > fs[j].Estimate; j-- {
			fs[j-1], fs[j] = fs[j], fs[j-1]
		}
	}
}

