// Package schema implements the Schema Registry described in spec.md
// §4.1 and §6: the catalog of attribute types, object classes, syntaxes
// and matching rules that resolves user-supplied attribute identifiers
// to canonical OIDs and supplies per-attribute normalization and
// equality/ordering semantics to the Name Model, Entry Model, Partition
// Engine and Search Engine.
//
// The registry is read-mostly and copy-on-write, per spec.md §5. Edits
// (WithAttributeType, WithObjectClass, WithSyntax, WithMatchingRule)
// return a new Registry and leave the receiver untouched, so concurrent
// readers holding the old one (every operation in flight) never block on
// or observe a schema edit. The package does not swap a new Registry in
// for the components already holding the old one.
package schema
