// Package entry implements the Entry Model: a directory entry as a DN
// plus a set of schema-typed attributes, and the all-or-nothing
// modification algorithm the Partition Engine applies on modify
// operations (spec.md §4.3).
//
// Distilled from the teacher's internal/backend.Entry (a flat
// map[string][]string), generalized to carry binary-valued attributes
// distinctly from string-valued ones and to expose the validator hook
// internal/schema needs without creating an import cycle.
package entry
