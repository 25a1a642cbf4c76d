// Package referral implements the Referral Manager (spec.md §4.6): an
// in-memory tree mirroring the DIT, holding referral entries (object
// class "referral", a ref attribute of server URLs) at their DN.
//
// Distilled from the teacher's internal/storage/radix package's "tree
// mirroring the DIT for DN hierarchy traversal" idiom (tree.go, node.go),
// generalized from a byte-level radix trie over on-disk page pointers to
// an in-memory trie keyed by schema-normalized DN components, since this
// tree only ever holds the (small) set of referral entries rather than
// every entry in a partition.
package referral

import (
	"sync"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/schema"
)

// node is one DN component of the tree; present at any depth a referral
// or an ancestor of one was inserted.
type node struct {
	children map[string]*node
	uris     []string // non-nil only at a DN that itself names a referral
	self     dn.DN
}

func newNode() *node { return &node{children: make(map[string]*node)} }

// Tree holds every referral entry in one Nexus, per spec.md §4.6 "the
// referral manager keeps an in-memory tree mirroring the DIT". It holds
// its own readers-writer lock, independent of any Partition's lock,
// acquired for write only by referral Add/Delete and maintenance.
type Tree struct {
	mu       sync.RWMutex
	root     *node
	registry *schema.Registry
}

// NewTree constructs an empty referral tree.
func NewTree(registry *schema.Registry) *Tree {
	return &Tree{root: newNode(), registry: registry}
}

func (t *Tree) path(target dn.DN) []string {
	parts := make([]string, len(target.RDNs))
	for i := len(target.RDNs) - 1; i >= 0; i-- {
		parts[len(target.RDNs)-1-i] = dn.NormalizeRDN(target.RDNs[i], t.registry)
	}
	return parts
}

// Add records target as a referral entry carrying uris. Per spec.md §4.6
// this is invoked only when an entry with object class "referral" is
// added to a Partition.
func (t *Tree) Add(target dn.DN, uris []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.root
	for _, part := range t.path(target) {
		child := n.children[part]
		if child == nil {
			child = newNode()
			n.children[part] = child
		}
		n = child
	}
	n.uris = append([]string{}, uris...)
	n.self = target
}

// Remove deletes the referral at target, if one exists.
func (t *Tree) Remove(target dn.DN) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.root
	for _, part := range t.path(target) {
		child := n.children[part]
		if child == nil {
			return
		}
		n = child
	}
	n.uris = nil
}

// Lookup returns the nearest referral at or above target, per spec.md
// §4.6 "if the target DN lies at or under a referral". The search walks
// from the root toward target and keeps the deepest match found, so a
// referral at ou=people,o=example masks anything below it for a lookup
// at cn=alice,ou=people,o=example, but a referral at o=example does not
// mask a closer one at ou=people,o=example.
func (t *Tree) Lookup(target dn.DN) (refDN dn.DN, uris []string, found bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.root
	for _, part := range t.path(target) {
		child, ok := n.children[part]
		if !ok {
			break
		}
		n = child
		if n.uris != nil {
			refDN, uris, found = n.self, n.uris, true
		}
	}
	return refDN, uris, found
}
