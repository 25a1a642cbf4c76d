package interceptor

import (
	"github.com/obadir/oba/internal/errs"
	"github.com/obadir/oba/internal/referral"
)

// referralStage is spec.md §4.5 stage 3: if ctx.Target lies at or under a
// referral entry and the request does not carry ManageDsaIT, the chain
// stops here with a referral result rather than reaching the Partition
// Engine, per spec.md §4.6.
type referralStage struct {
	tree *referral.Tree
}

// NewReferralStage constructs the Referral interceptor.
func NewReferralStage(tree *referral.Tree) Interceptor {
	return &referralStage{tree: tree}
}

func (s *referralStage) Name() string { return "referral" }

func (s *referralStage) Handle(ctx *OperationContext, next Next) error {
	if ctx.ManageDsaIT {
		return next()
	}
	if refDN, uris, found := s.tree.Lookup(ctx.Target); found {
		return errs.Referral(refDN.String(), uris)
	}
	return next()
}
