// Package filter implements spec.md §4.4's filter grammar: RFC 4515
// textual parsing into a Filter tree, a schema-normalization visitor
// (Normalize), a selectivity-estimating optimizer (Optimize) driven by a
// CardinalityEstimator the Partition Engine's indexes supply, and a
// direct tree evaluator (Evaluate) for full-scan and post-index-lookup
// predicate checking.
//
// The package owns the filter tree and its optimizer annotations only;
// translating an optimized tree into composed index cursors is
// internal/search's Cursor Builder, which imports this package rather
// than the other way around.
package filter
