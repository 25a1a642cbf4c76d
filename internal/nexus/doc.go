// Package nexus implements the Partition Nexus: it routes a DN to the
// Partition whose suffix is the longest matching ancestor of that DN,
// and synthesizes the virtual root DSE every server exposes at the
// empty DN, per spec.md §2 and §4.
package nexus
