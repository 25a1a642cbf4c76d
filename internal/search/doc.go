// Package search implements the Search Engine (spec.md §4.4): it takes a
// parsed filter.Filter, a scope, and an alias-dereference mode, and
// produces the matching entries by composing cursors over a
// *partition.Partition's indexes rather than scanning every entry.
//
// Distilled from the teacher's internal/server/search_onelevel.go size/
// time-limit enforcement loop and internal/filter's Evaluator, reused
// here as the post-filter predicate once an index cursor narrows the
// candidate set; generalized from the teacher's single DN-prefix scan
// to the optimizer-driven cursor composition of spec.md §4.4.
package search
