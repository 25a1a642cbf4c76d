package partition

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/obadir/oba/internal/btree"
	"github.com/obadir/oba/internal/crypto"
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/schema"
)

// ID identifies an entry within a partition. 0 is reserved as the
// fictitious parent of the suffix root, per spec.md §3 "Master Table".
type ID = uint64

// RootID is the fictitious parent of the suffix root.
const RootID ID = 0

const sep = 0x00

// Partition owns a contiguous subtree rooted at a suffix DN: the master
// table plus the full index family spec.md §3 describes, and the
// Add/Delete/Modify/Rename/Move entry points that keep every index
// invariant in step with each mutation.
type Partition struct {
	mu sync.RWMutex

	Suffix   dn.DN
	registry *schema.Registry
	csnGen   *entry.CSNGenerator

	master *btree.Table // id -> encoded entry

	rdnFwd *btree.Table // parentID + normalizedRDN -> childID (unique)
	rdnRev *btree.Table // childID -> parentID + user-form RDN text (unique)

	oneLevel *btree.Table // parentID -> childID
	subLevel *btree.Table // ancestorID -> descendantID

	alias    *btree.Table // aliasID -> aliased DN text (unique)
	oneAlias *btree.Table // parentID -> aliasID
	subAlias *btree.Table // ancestorID -> aliasID

	presence *btree.Table // attrOID -> id
	userFwd  *btree.Table // attrOID + normValue -> id
	userRev  *btree.Table // id -> attrOID + normValue

	uuidIndex *btree.Table // uuid text -> id (unique)

	indexedAttrs map[string]bool // attrOID -> indexed
	nextID       uint64

	// cryptoKey, when non-nil, encrypts every master table record at
	// rest with AES-256-GCM; nil (the default) stores plain records.
	cryptoKey *crypto.EncryptionKey
}

// NewPartition constructs an empty partition rooted at suffix. indexed
// names the attribute names/OIDs the per-attribute user index maintains;
// a nil or empty slice falls back to the teacher's default set
// (objectClass, uid, cn, sn, mail) per internal/storage/index's
// DefaultIndexedAttributes.
func NewPartition(suffix dn.DN, registry *schema.Registry, replicaID string, indexed []string) *Partition {
	if len(indexed) == 0 {
		indexed = []string{"objectClass", "uid", "cn", "sn", "mail"}
	}
	idx := make(map[string]bool, len(indexed))
	for _, name := range indexed {
		idx[registry.CanonicalOID(name)] = true
	}
	return &Partition{
		Suffix:       suffix,
		registry:     registry,
		csnGen:       entry.NewCSNGenerator(replicaID),
		master:       btree.New("master"),
		rdnFwd:       btree.New("rdn.fwd"),
		rdnRev:       btree.New("rdn.rev"),
		oneLevel:     btree.New("onelevel"),
		subLevel:     btree.New("sublevel"),
		alias:        btree.New("alias"),
		oneAlias:     btree.New("onealias"),
		subAlias:     btree.New("subalias"),
		presence:     btree.New("presence"),
		userFwd:      btree.New("user.fwd"),
		userRev:      btree.New("user.rev"),
		uuidIndex:    btree.New("uuid"),
		indexedAttrs: idx,
		nextID:       1,
	}
}

// WithEncryption configures p to encrypt every master table record at
// rest with key, per spec.md §3's "B-tree Table Layer" persisting entry
// bodies; index tables still hold only normalized attribute values and
// IDs, never entry content, so they carry no plaintext to encrypt.
// Grounded in the teacher's internal/storage/engine encryption-at-rest
// option, adapted from a whole-page AES-GCM wrap to a per-record wrap
// at the one place this package serializes an Entry to bytes.
func (p *Partition) WithEncryption(key *crypto.EncryptionKey) *Partition {
	p.cryptoKey = key
	return p
}

func encodeID(id ID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

func decodeID(b []byte) ID {
	return binary.BigEndian.Uint64(b)
}

func compositeKey(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	out := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p...)
	}
	return out
}

// isIndexed reports whether attrOID carries a per-attribute user index.
func (p *Partition) isIndexed(attrOID string) bool { return p.indexedAttrs[attrOID] }

// isAlias reports whether e's objectClass values include "alias", per
// RFC 4512 §2.6 and spec.md §3 invariant 5.
func isAlias(e *entry.Entry, registry *schema.Registry) bool {
	oc := e.Get("objectClass")
	if oc == nil {
		return false
	}
	for _, v := range oc.Values {
		if strings.EqualFold(v.String(), "alias") {
			return true
		}
		if def := registry.ObjectClass(v.String()); def != nil && strings.EqualFold(def.Name, "alias") {
			return true
		}
	}
	return false
}

// aliasTarget returns the DN an alias entry points to, via its
// aliasedObjectName attribute.
func aliasTarget(e *entry.Entry) (dn.DN, error) {
	a := e.Get("aliasedObjectName")
	if a == nil || len(a.Values) == 0 {
		return dn.DN{}, errs.New(errs.KindAliasProblem, "alias entry missing aliasedObjectName")
	}
	return dn.Parse(a.Values[0].String())
}

// Universe satisfies filter.CardinalityEstimator: the partition's total
// entry count, the estimate for a NOT node's complement.
func (p *Partition) Universe() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(p.master.Len())
}

// Presence satisfies filter.CardinalityEstimator.
func (p *Partition) Presence(attrOID string) int64 {
	vals, ok := p.presence.Get([]byte(attrOID))
	if !ok {
		return 0
	}
	return int64(len(vals))
}

// Equality satisfies filter.CardinalityEstimator.
func (p *Partition) Equality(attrOID string, normValue []byte) int64 {
	vals, ok := p.userFwd.Get(compositeKey([]byte(attrOID), normValue))
	if !ok {
		return 0
	}
	return int64(len(vals))
}
