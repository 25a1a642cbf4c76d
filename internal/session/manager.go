package session

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/interceptor"
	"github.com/obadir/oba/internal/nexus"
	"github.com/obadir/oba/internal/schema"
	"github.com/obadir/oba/internal/search"
)

// Manager is the Operation Manager spec.md §9's DESIGN NOTES describe:
// the single caller-facing entry point that resolves a request's target
// partition via the Nexus and drives it through the Interceptor Chain,
// with the chain's final link being the actual Partition/Search Engine
// call. It holds no entry state of its own — that lives in the Nexus's
// mounted Partitions and their own locks — only the chain and the
// routing table needed to reach them.
//
// Grounded in the teacher's internal/server/connection.go dispatch
// methods (handleBind/handleSearch/handleAdd/...), stripped of BER
// decoding and response encoding: a Manager method takes and returns
// this repo's own typed request/result values, not wire bytes.
type Manager struct {
	nx       *nexus.Nexus
	chain    *interceptor.Chain
	registry *schema.Registry
}

// NewManager constructs an Operation Manager dispatching through chain,
// resolving targets via nx.
func NewManager(nx *nexus.Nexus, chain *interceptor.Chain, registry *schema.Registry) *Manager {
	return &Manager{nx: nx, chain: chain, registry: registry}
}

// Bind authenticates principal against password, updating sess on
// success.
func (m *Manager) Bind(sess *Session, principal dn.DN, password string) error {
	ctx := &interceptor.OperationContext{Op: interceptor.OpBind, Target: principal, BindPassword: password}
	if err := m.chain.Execute(ctx, func() error { return nil }); err != nil {
		return err
	}
	sess.Bind(ctx.Principal)
	return nil
}

// Add performs an Add operation bound to sess's principal.
func (m *Manager) Add(sess *Session, e *entry.Entry) error {
	ctx := m.newContext(sess, interceptor.OpAdd)
	ctx.Target = e.DN
	ctx.NewEntry = e
	return m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		return p.Add(ctx.NewEntry)
	})
}

// Delete performs a Delete operation bound to sess's principal.
func (m *Manager) Delete(sess *Session, target dn.DN) error {
	ctx := m.newContext(sess, interceptor.OpDelete)
	ctx.Target = target
	return m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		return p.Delete(ctx.Target)
	})
}

// Modify performs a Modify operation bound to sess's principal.
func (m *Manager) Modify(sess *Session, target dn.DN, mods []entry.Modification) error {
	ctx := m.newContext(sess, interceptor.OpModify)
	ctx.Target = target
	ctx.Mods = mods
	return m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		_, err = p.Modify(ctx.Target, ctx.Mods)
		return err
	})
}

// ModifyDN performs a rename and/or move bound to sess's principal.
func (m *Manager) ModifyDN(sess *Session, target dn.DN, newRDN dn.RDN, deleteOldRDN bool, newParent dn.DN, hasNewParent bool) error {
	ctx := m.newContext(sess, interceptor.OpModifyDN)
	ctx.Target = target
	ctx.NewRDN = newRDN
	ctx.DeleteOldRDNAttr = deleteOldRDN
	ctx.NewParent = newParent
	ctx.HasNewParent = hasNewParent
	return m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		switch {
		case ctx.HasNewParent:
			return p.MoveAndRename(ctx.Target, ctx.NewParent, ctx.NewRDN, ctx.DeleteOldRDNAttr)
		default:
			return p.Rename(ctx.Target, ctx.NewRDN, ctx.DeleteOldRDNAttr)
		}
	})
}

// Compare performs a Compare operation bound to sess's principal,
// returning the match result.
func (m *Manager) Compare(sess *Session, target dn.DN, attr string, value entry.Value) (bool, error) {
	ctx := m.newContext(sess, interceptor.OpCompare)
	ctx.Target = target
	ctx.CompareAttr = attr
	ctx.CompareValue = value
	err := m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		e, err := p.Lookup(ctx.Target, []string{ctx.CompareAttr})
		if err != nil {
			return err
		}
		a := e.Get(ctx.CompareAttr)
		if a == nil {
			ctx.CompareResult = false
			return nil
		}
		want := m.registry.NormalizeEquality(ctx.CompareAttr, ctx.CompareValue.Raw())
		for _, v := range a.Values {
			got := m.registry.NormalizeEquality(ctx.CompareAttr, v.Raw())
			if string(got) == string(want) {
				ctx.CompareResult = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return ctx.CompareResult, nil
}

// Search performs a Search operation bound to sess's principal,
// invoking visit for every result that survives every stage's read-time
// filtering.
func (m *Manager) Search(sess *Session, messageID int, req search.Request, visit func(search.Result) error) error {
	ctx := m.newContext(sess, interceptor.OpSearch)
	ctx.Target = req.Base
	ctx.SearchRequest = req
	ctx.Visit = visit
	ctx.Abandoned = sess.Begin(messageID)
	defer sess.End(messageID)
	return m.chain.Execute(ctx, func() error {
		p, err := m.nx.Route(ctx.Target)
		if err != nil {
			return err
		}
		eng := search.NewEngine(p, m.registry)
		return eng.Search(ctx.SearchRequest, ctx.Visit)
	})
}

func (m *Manager) newContext(sess *Session, op interceptor.OpType) *interceptor.OperationContext {
	return &interceptor.OperationContext{
		Op:        op,
		Principal: sess.Principal(),
	}
}
