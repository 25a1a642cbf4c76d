package interceptor

import (
	"github.com/obadir/oba/internal/authn"
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/nexus"
)

// authenticationStage resolves the session's principal on Bind, per
// spec.md §4.5 stage 2. Every other operation passes through unchanged
// here — its principal was already resolved by an earlier Bind and
// travels with the session, not re-derived per request.
//
// Restores the teacher's internal/password/lockout.go account-lockout
// behavior (an earlier distillation pass dropped it): a principal with
// too many recent failures is rejected before its password is even
// checked, and a successful Bind clears its failure history.
type authenticationStage struct {
	nx      *nexus.Nexus
	lockout *authn.LockoutRegistry
}

// NewAuthenticationStage constructs the Authentication interceptor.
func NewAuthenticationStage(nx *nexus.Nexus, lockout *authn.LockoutRegistry) Interceptor {
	return &authenticationStage{nx: nx, lockout: lockout}
}

func (s *authenticationStage) Name() string { return "authentication" }

func (s *authenticationStage) Handle(ctx *OperationContext, next Next) error {
	if ctx.Op != OpBind {
		return next()
	}

	principal := ctx.Target
	if principal.IsRoot() && ctx.BindPassword == "" {
		// Anonymous bind: RFC 4511 §4.2 "a client may send a BindRequest
		// with simple authentication, an empty password, or both empty."
		ctx.Principal = dn.DN{}
		return next()
	}

	if err := s.lockout.CheckLocked(principal); err != nil {
		return err
	}

	p, err := s.nx.Route(principal)
	if err != nil {
		return errs.New(errs.KindInvalidCredentials, "invalid credentials")
	}
	e, err := p.Lookup(principal, []string{"userPassword"})
	if err != nil {
		return errs.New(errs.KindInvalidCredentials, "invalid credentials")
	}
	attr := e.Get("userPassword")
	if attr == nil {
		s.lockout.RecordFailure(principal)
		return errs.New(errs.KindInvalidCredentials, "invalid credentials")
	}
	stored := make([]string, len(attr.Values))
	for i, v := range attr.Values {
		stored[i] = v.String()
	}
	if err := authn.VerifyAny(ctx.BindPassword, stored); err != nil {
		s.lockout.RecordFailure(principal)
		return errs.New(errs.KindInvalidCredentials, "invalid credentials")
	}

	s.lockout.RecordSuccess(principal)
	ctx.Principal = principal
	ctx.BindPassword = ""
	return next()
}
