// Package interceptor implements the Interceptor Chain (spec.md §4.5): an
// ordered pipeline of named stages dispatched head-to-tail with a next
// continuation, sitting above internal/partition and internal/search and
// below the as-yet-unbuilt wire-protocol tier.
//
// Distilled from the teacher's internal/acl hot-reloadable evaluator/
// manager idiom (Normalization through Access Control) and its
// internal/storage/stream.Broker pub/sub idiom (the Event stage),
// generalized from the teacher's flat ACL-only gate into the full
// 13-stage canonical order spec.md §4.5 names, each stage implementing
// the same Interceptor interface and composed into one Chain.
package interceptor
