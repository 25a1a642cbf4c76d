package acl

import "github.com/obadir/oba/internal/dn"

// AccessContext carries one access decision's inputs, per the teacher's
// acl.AccessContext, retyped onto dn.DN instead of plain strings.
type AccessContext struct {
	Principal  dn.DN
	Target     dn.DN
	Operation  Right
	Attributes []string
}

// Evaluator runs first-match-wins evaluation against a Config, per the
// teacher's acl.Evaluator.
type Evaluator struct {
	config  *Config
	matcher *Matcher
}

// NewEvaluator builds an Evaluator; cmp is normally dn.Comparator(registry).
func NewEvaluator(config *Config, cmp func(attrType, a, b string) bool) *Evaluator {
	if config == nil {
		config = NewConfig()
	}
	return &Evaluator{config: config, matcher: NewMatcher(cmp)}
}

// CheckAccess determines if ctx.Operation is allowed on ctx.Target,
// unchanged first-match-wins semantics from the teacher's Evaluator.CheckAccess.
func (e *Evaluator) CheckAccess(ctx *AccessContext) bool {
	for _, rule := range e.config.Rules {
		if !e.matcher.MatchesTarget(rule, ctx.Target) {
			continue
		}
		if !e.matcher.MatchesSubject(rule, ctx.Principal, ctx.Target) {
			continue
		}
		if !rule.Rights.Has(ctx.Operation) {
			continue
		}
		return !rule.Deny
	}
	return e.config.DefaultAllow
}

// CheckAttributeAccess additionally requires the matching rule to govern attr.
func (e *Evaluator) CheckAttributeAccess(ctx *AccessContext, attr string) bool {
	for _, rule := range e.config.Rules {
		if !e.matcher.MatchesTarget(rule, ctx.Target) {
			continue
		}
		if !e.matcher.MatchesSubject(rule, ctx.Principal, ctx.Target) {
			continue
		}
		if !rule.AppliesToAttribute(attr) {
			continue
		}
		if !rule.Rights.Has(ctx.Operation) {
			continue
		}
		return !rule.Deny
	}
	return e.config.DefaultAllow
}

// FilterAttributeNames returns the subset of names ctx.Principal may read
// on ctx.Target, per the teacher's Evaluator.FilterAttributeList.
func (e *Evaluator) FilterAttributeNames(ctx *AccessContext, names []string) []string {
	readCtx := &AccessContext{Principal: ctx.Principal, Target: ctx.Target, Operation: Read}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if e.CheckAttributeAccess(readCtx, name) {
			out = append(out, name)
		}
	}
	return out
}

// SetConfig atomically swaps the evaluator's rule set, used by Manager on
// hot reload.
func (e *Evaluator) SetConfig(config *Config) {
	if config == nil {
		config = NewConfig()
	}
	e.config = config
}

// Config returns the evaluator's current rule set.
func (e *Evaluator) Config() *Config { return e.config }
