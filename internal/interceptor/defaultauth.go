package interceptor

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
)

// AuthorizationPolicy holds the global authorization defaults the
// Default Authorization stage enforces, per spec.md §4.5 stage 5
// ("administrator bypass; anonymous restrictions").
type AuthorizationPolicy struct {
	// AdministratorDN names the principal the Default Authorization
	// stage and everything after it treats as exempt from its own
	// restrictions. It does not override an earlier Access Control
	// (stage 4) denial; an ACL rule file should grant this DN an
	// explicit allow-all rule so stage 4 never blocks it.
	AdministratorDN dn.DN

	// AllowAnonymousWrite, when false (the default), denies every
	// mutating operation bound anonymously, regardless of what the ACL
	// rule set would otherwise permit.
	AllowAnonymousWrite bool

	cmp func(attrType, a, b string) bool
}

// NewAuthorizationPolicy constructs a policy using cmp (normally
// dn.Comparator(registry)) to compare a bind principal against
// AdministratorDN.
func NewAuthorizationPolicy(administratorDN dn.DN, allowAnonymousWrite bool, cmp func(attrType, a, b string) bool) *AuthorizationPolicy {
	return &AuthorizationPolicy{AdministratorDN: administratorDN, AllowAnonymousWrite: allowAnonymousWrite, cmp: cmp}
}

// IsAdministrator reports whether principal is the configured administrator.
func (p *AuthorizationPolicy) IsAdministrator(principal dn.DN) bool {
	if p.AdministratorDN.IsRoot() {
		return false
	}
	return principal.Equal(p.AdministratorDN, p.cmp)
}

func isMutatingOp(op OpType) bool {
	switch op {
	case OpAdd, OpDelete, OpModify, OpModifyDN:
		return true
	default:
		return false
	}
}

type defaultAuthStage struct {
	policy *AuthorizationPolicy
}

// NewDefaultAuthorizationStage constructs the Default Authorization
// interceptor over policy.
func NewDefaultAuthorizationStage(policy *AuthorizationPolicy) Interceptor {
	return &defaultAuthStage{policy: policy}
}

func (s *defaultAuthStage) Name() string { return "defaultauthorization" }

func (s *defaultAuthStage) Handle(ctx *OperationContext, next Next) error {
	if s.policy.IsAdministrator(ctx.Principal) {
		return next()
	}
	if ctx.Principal.IsRoot() && isMutatingOp(ctx.Op) && !s.policy.AllowAnonymousWrite {
		return errs.New(errs.KindInsufficientAccessRights, "anonymous binds may not perform mutating operations")
	}
	return next()
}
