// Package btree provides the ordered key/value table the Partition Engine
// builds its master table and index family on top of: binary-comparable
// keys, duplicate-key (multimap) values for one-to-many indexes, and
// forward cursors for range scans.
//
// Distilled from the teacher's internal/storage/btree B+ tree (itself
// page- and WAL-backed for on-disk persistence). This package keeps the
// teacher's cursor and error-sentinel idiom but holds tables in memory as
// sorted key slices rather than paged nodes; spec.md's engine is
// explicitly scoped to the in-process storage contract, not a durable
// on-disk format, so the page manager, write-ahead log and mmap layers
// the teacher built around BPlusTree have no SPEC_FULL.md component left
// to serve and are not carried forward (see DESIGN.md).
//
// Each Table serializes its own mutations behind a single RWMutex: the
// write barrier spec.md §5 requires so that a partition's index updates
// for one operation never interleave with another's.
package btree
