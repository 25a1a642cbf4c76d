package interceptor

import (
	"strings"
	"sync"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/schema"
	"github.com/obadir/oba/internal/search"
)

// SubentryStore tracks every registered subentry's effective subtree
// scope and collective attribute set, shared by the Subentry and
// Collective Attributes interceptors (stages 9 and 10 of spec.md §4.5:
// "Subentry — maintains collective attributes and subtree
// specifications" / "Collective Attributes — at read time, fuses
// collective attribute values from applicable subentries into entries").
//
// A subentry is any entry with structural object class "subentry"
// (RFC 3672); its collective attributes are the ones named with the
// conventional "c-" prefix (RFC 3671), e.g. c-l, c-postalAddress. Its
// administrative scope is, for simplicity, the subtree rooted at its
// own parent — the parent itself, every sibling of the subentry, and
// their descendants; the subentry itself receives none of its own
// collective attributes.
type SubentryStore struct {
	mu       sync.RWMutex
	byDN     map[string]*subentryRecord
	registry *schema.Registry
}

type subentryRecord struct {
	dn         dn.DN
	scope      dn.DN
	collective *entry.Entry
}

// NewSubentryStore constructs an empty store.
func NewSubentryStore(registry *schema.Registry) *SubentryStore {
	return &SubentryStore{byDN: make(map[string]*subentryRecord), registry: registry}
}

func (s *SubentryStore) key(d dn.DN) string { return dn.Normalize(d, s.registry) }

func (s *SubentryStore) register(d dn.DN, e *entry.Entry) {
	scope, ok := d.Parent()
	if !ok {
		scope = d
	}
	collective := entry.New(d)
	for _, name := range e.AttributeNames() {
		if strings.HasPrefix(strings.ToLower(name), "c-") {
			if a := e.Get(name); a != nil {
				collective.Add(name, a.Values...)
			}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDN[s.key(d)] = &subentryRecord{dn: d, scope: scope, collective: collective}
}

func (s *SubentryStore) unregister(d dn.DN) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byDN, s.key(d))
}

// fuse returns e, or a clone of e with every applicable subentry's
// collective attribute values copied in for attributes e does not
// already define locally.
func (s *SubentryStore) fuse(target dn.DN, e *entry.Entry) *entry.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.byDN) == 0 {
		return e
	}
	cmp := dn.Comparator(s.registry)
	out := e
	cloned := false
	for _, rec := range s.byDN {
		if target.Equal(rec.dn, cmp) || !target.IsDescendantOf(rec.scope, cmp) {
			continue
		}
		for _, name := range rec.collective.AttributeNames() {
			if out.Get(name) != nil {
				continue
			}
			if !cloned {
				out = out.Clone()
				cloned = true
			}
			a := rec.collective.Get(name)
			out.Add(name, a.Values...)
		}
	}
	return out
}

func isSubentry(e *entry.Entry) bool {
	oc := e.Get("objectClass")
	if oc == nil {
		return false
	}
	for _, v := range oc.Values {
		if strings.EqualFold(v.String(), "subentry") {
			return true
		}
	}
	return false
}

// subentryStage is spec.md §4.5 stage 9.
type subentryStage struct {
	store *SubentryStore
}

// NewSubentryStage constructs the Subentry interceptor.
func NewSubentryStage(store *SubentryStore) Interceptor {
	return &subentryStage{store: store}
}

func (s *subentryStage) Name() string { return "subentry" }

func (s *subentryStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd:
		if err := next(); err != nil {
			return err
		}
		if isSubentry(ctx.NewEntry) {
			s.store.register(ctx.Target, ctx.NewEntry)
		}
		return nil
	case OpDelete:
		if err := next(); err != nil {
			return err
		}
		s.store.unregister(ctx.Target)
		return nil
	default:
		return next()
	}
}

// collectiveAttributesStage is spec.md §4.5 stage 10.
type collectiveAttributesStage struct {
	store *SubentryStore
}

// NewCollectiveAttributesStage constructs the Collective Attributes
// interceptor.
func NewCollectiveAttributesStage(store *SubentryStore) Interceptor {
	return &collectiveAttributesStage{store: store}
}

func (s *collectiveAttributesStage) Name() string { return "collectiveattributes" }

func (s *collectiveAttributesStage) Handle(ctx *OperationContext, next Next) error {
	if ctx.Op != OpSearch {
		return next()
	}
	inner := ctx.Visit
	ctx.Visit = func(r search.Result) error {
		r.Entry = s.store.fuse(r.DN, r.Entry)
		return inner(r)
	}
	return next()
}
