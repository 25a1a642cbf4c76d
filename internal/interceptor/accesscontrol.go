package interceptor

import (
	"github.com/obadir/oba/internal/acl"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/search"
)

// accessControlStage is spec.md §4.5 stage 4: every operation is checked
// against the ACL rule set before it may reach the Partition/Search
// Engine, and every search result is attribute-filtered before it
// reaches the caller.
type accessControlStage struct {
	mgr *acl.Manager
}

// NewAccessControlStage constructs the Access Control interceptor over
// mgr's live Evaluator.
func NewAccessControlStage(mgr *acl.Manager) Interceptor {
	return &accessControlStage{mgr: mgr}
}

func (s *accessControlStage) Name() string { return "accesscontrol" }

func (s *accessControlStage) Handle(ctx *OperationContext, next Next) error {
	eval := s.mgr.Evaluator()

	switch ctx.Op {
	case OpBind:
		return next()

	case OpSearch:
		ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.SearchRequest.Base, Operation: acl.SearchRight}
		if !eval.CheckAccess(ac) {
			return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to search")
		}
		inner := ctx.Visit
		ctx.Visit = func(r search.Result) error {
			readCtx := &acl.AccessContext{Principal: ctx.Principal, Target: r.DN, Operation: acl.Read}
			if !eval.CheckAccess(readCtx) {
				return nil
			}
			names := r.Entry.AttributeNames()
			allowed := eval.FilterAttributeNames(readCtx, names)
			if len(allowed) != len(names) {
				filtered := r.Entry.Clone()
				allowedSet := make(map[string]bool, len(allowed))
				for _, n := range allowed {
					allowedSet[n] = true
				}
				for _, n := range names {
					if !allowedSet[n] {
						filtered.RemoveAttr(n)
					}
				}
				r.Entry = filtered
			}
			return inner(r)
		}
		return next()

	case OpCompare:
		ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: acl.CompareRight}
		if !eval.CheckAttributeAccess(ac, ctx.CompareAttr) {
			return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to compare")
		}
		return next()

	case OpAdd:
		ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: acl.AddRight}
		if !eval.CheckAccess(ac) {
			return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to add")
		}
		return next()

	case OpDelete:
		ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: acl.DeleteRight}
		if !eval.CheckAccess(ac) {
			return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to delete")
		}
		return next()

	case OpModify:
		for _, mod := range ctx.Mods {
			ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: acl.Write}
			if !eval.CheckAttributeAccess(ac, mod.Attribute) {
				return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to modify "+mod.Attribute)
			}
		}
		return next()

	case OpModifyDN:
		ac := &acl.AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: acl.Write}
		if !eval.CheckAccess(ac) {
			return errs.New(errs.KindInsufficientAccessRights, "insufficient access rights to rename")
		}
		return next()

	default:
		return next()
	}
}
