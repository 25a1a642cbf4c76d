package acl

import "github.com/obadir/oba/internal/dn"

// Matcher provides DN and subject matching over this repo's typed dn.DN,
// generalized from the teacher's string-suffix matcher.go.
type Matcher struct {
	cmp func(attrType, a, b string) bool
}

// NewMatcher builds a Matcher using cmp (normally dn.Comparator(registry))
// for every RDN-value comparison a match needs.
func NewMatcher(cmp func(attrType, a, b string) bool) *Matcher {
	return &Matcher{cmp: cmp}
}

// MatchesTarget checks if target matches rule's Target pattern and Scope,
// per the teacher's Matcher.MatchesTarget.
func (m *Matcher) MatchesTarget(rule *Rule, target dn.DN) bool {
	if rule.TargetAny {
		return true
	}
	switch rule.Scope {
	case ScopeBase:
		return target.Equal(rule.Target, m.cmp)
	case ScopeOne:
		parent, ok := target.Parent()
		return ok && parent.Equal(rule.Target, m.cmp)
	case ScopeSubtree:
		return target.Equal(rule.Target, m.cmp) || target.IsDescendantOf(rule.Target, m.cmp)
	default:
		return false
	}
}

// MatchesSubject checks if principal matches rule's Subject, per the
// teacher's Matcher.MatchesSubject.
func (m *Matcher) MatchesSubject(rule *Rule, principal, target dn.DN) bool {
	switch rule.Subject {
	case SubjectAnonymous:
		return principal.IsRoot()
	case SubjectAuthenticated:
		return !principal.IsRoot()
	case SubjectSelf:
		return !principal.IsRoot() && principal.Equal(target, m.cmp)
	case SubjectAny:
		return true
	case SubjectDN:
		return principal.Equal(rule.SubjectTarget, m.cmp)
	default:
		return false
	}
}
