package interceptor

import (
	"github.com/obadir/oba/internal/changelog"
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/nexus"
)

// changeLogStage is spec.md §4.5 stage 11: after a mutation has
// persisted, it records a (revision, operationType, beforeEntry,
// afterEntry) tuple, never a failed attempt, per spec.md §7
// "Interceptors must not swallow errors they did not produce; the
// Change Log records only post-persistence events, never failed ones."
type changeLogStage struct {
	nx  *nexus.Nexus
	log *changelog.Log
}

// NewChangeLogStage constructs the Change Log interceptor, appending
// every successful mutation to log.
func NewChangeLogStage(nx *nexus.Nexus, log *changelog.Log) Interceptor {
	return &changeLogStage{nx: nx, log: log}
}

func (s *changeLogStage) Name() string { return "changelog" }

func (s *changeLogStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd:
		if err := next(); err != nil {
			return err
		}
		s.log.Append(changelog.OpAdd, ctx.Target, nil, s.snapshot(ctx.Target))
		return nil

	case OpDelete:
		before := s.snapshot(ctx.Target)
		if err := next(); err != nil {
			return err
		}
		s.log.Append(changelog.OpDelete, ctx.Target, before, nil)
		return nil

	case OpModify:
		before := s.snapshot(ctx.Target)
		if err := next(); err != nil {
			return err
		}
		s.log.Append(changelog.OpModify, ctx.Target, before, s.snapshot(ctx.Target))
		return nil

	case OpModifyDN:
		before := s.snapshot(ctx.Target)
		if err := next(); err != nil {
			return err
		}
		newTarget := s.newTargetDN(ctx)
		s.log.Append(changelog.OpModifyDN, newTarget, before, s.snapshot(newTarget))
		return nil

	default:
		return next()
	}
}

// snapshot returns a defensive clone of the entry currently at target,
// or nil if it cannot be resolved (e.g. the target no longer exists
// after a Delete).
func (s *changeLogStage) snapshot(target dn.DN) *entry.Entry {
	p, err := s.nx.Route(target)
	if err != nil {
		return nil
	}
	e, err := p.Lookup(target, nil)
	if err != nil {
		return nil
	}
	return e.Clone()
}

func (s *changeLogStage) newTargetDN(ctx *OperationContext) dn.DN {
	if ctx.HasNewParent {
		return ctx.NewParent.AppendParent(ctx.NewRDN)
	}
	if parent, ok := ctx.Target.Parent(); ok {
		return parent.AppendParent(ctx.NewRDN)
	}
	return ctx.Target
}
