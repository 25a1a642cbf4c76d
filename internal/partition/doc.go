// Package partition implements the Partition Engine (spec.md §3, §4.3):
// the master table and full index family (RDN, one-level, sub-level,
// alias, presence, per-attribute user, entryUUID) for a single suffix,
// and the Add/Delete/Modify/Rename/Move/MoveAndRename/Lookup/HasEntry/
// List entry points that maintain every index invariant transactionally
// on each mutation.
//
// Distilled from the teacher's internal/backend (ObaBackend, a flat
// single-partition DN->Entry map with no ID indirection or index family)
// and internal/storage/index (IndexManager's presence/equality/substring
// indexes), generalized to the ID-keyed master-table-plus-index-family
// design spec.md §3 requires and built directly on internal/btree.Table
// rather than the teacher's page-backed B+Tree, per internal/btree's own
// scoping note.
package partition
