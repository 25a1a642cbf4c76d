package interceptor

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/nexus"
	"github.com/obadir/oba/internal/partition"
)

// exceptionStage is spec.md §4.5 stage 6: verifies the pre-conditions a
// mutating operation requires (target exists, parent exists and is not
// an alias, target does not already exist) before the Partition Engine
// itself would otherwise fail deeper into a write, so a rejected
// operation never leaves a partial index update behind.
type exceptionStage struct {
	nx *nexus.Nexus
}

// NewExceptionStage constructs the Exception interceptor.
func NewExceptionStage(nx *nexus.Nexus) Interceptor {
	return &exceptionStage{nx: nx}
}

func (s *exceptionStage) Name() string { return "exception" }

func (s *exceptionStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd:
		if err := s.checkAdd(ctx.Target); err != nil {
			return err
		}
	case OpDelete, OpModify, OpCompare:
		if err := s.checkExists(ctx.Target); err != nil {
			return err
		}
	case OpModifyDN:
		if err := s.checkModifyDN(ctx); err != nil {
			return err
		}
	}
	return next()
}

func (s *exceptionStage) checkExists(target dn.DN) error {
	p, err := s.nx.Route(target)
	if err != nil {
		return err
	}
	if !p.HasEntry(target) {
		return errs.New(errs.KindNoSuchObject, "no such object").WithMatchedDN(target.String())
	}
	return nil
}

func (s *exceptionStage) checkAdd(target dn.DN) error {
	p, err := s.nx.Route(target)
	if err != nil {
		return err
	}
	if p.HasEntry(target) {
		return errs.New(errs.KindEntryAlreadyExists, "entry already exists")
	}
	parent, ok := target.Parent()
	if !ok {
		return nil
	}
	if !p.HasEntry(parent) {
		return errs.New(errs.KindNoSuchObject, "parent does not exist").WithMatchedDN(parent.String())
	}
	return s.checkNotAlias(p, parent, "cannot add an entry under an alias")
}

func (s *exceptionStage) checkModifyDN(ctx *OperationContext) error {
	if err := s.checkExists(ctx.Target); err != nil {
		return err
	}
	if !ctx.HasNewParent {
		return nil
	}
	p, err := s.nx.Route(ctx.NewParent)
	if err != nil {
		return err
	}
	if !p.HasEntry(ctx.NewParent) {
		return errs.New(errs.KindNoSuchObject, "new superior does not exist").WithMatchedDN(ctx.NewParent.String())
	}
	return s.checkNotAlias(p, ctx.NewParent, "cannot move an entry under an alias")
}

func (s *exceptionStage) checkNotAlias(p *partition.Partition, target dn.DN, message string) error {
	id, err := p.Resolve(target)
	if err != nil {
		return err
	}
	if p.IsAliasID(id) {
		return errs.New(errs.KindAliasProblem, message).WithMatchedDN(target.String())
	}
	return nil
}
