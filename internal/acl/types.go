// Package acl implements the Access Control interceptor's rule source:
// an ordered, first-match-wins list of target/subject/right rules loaded
// from a hot-reloadable YAML file, per spec.md §4.5 stage 4.
//
// Distilled from the teacher's internal/acl package, generalized from
// string-munged DNs (strings.HasSuffix/EqualFold comparisons in the
// teacher's matcher.go) to this repo's typed dn.DN and schema-driven
// comparator, and from the teacher's hand-rolled YAML tokenizer
// (loader.go) to gopkg.in/yaml.v3.
package acl

import "github.com/obadir/oba/internal/dn"

// Right is a bit-flag set of LDAP access rights, unchanged in shape from
// the teacher's acl.Right.
type Right int

const (
	Read Right = 1 << iota
	Write
	AddRight
	DeleteRight
	SearchRight
	CompareRight

	All = Read | Write | AddRight | DeleteRight | SearchRight | CompareRight
)

// Has reports whether r includes other.
func (r Right) Has(other Right) bool { return r&other != 0 }

func (r Right) String() string {
	switch r {
	case Read:
		return "read"
	case Write:
		return "write"
	case AddRight:
		return "add"
	case DeleteRight:
		return "delete"
	case SearchRight:
		return "search"
	case CompareRight:
		return "compare"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// Scope is how a Rule's Target DN is interpreted, unchanged in shape from
// the teacher's acl.Scope.
type Scope int

const (
	ScopeBase Scope = iota
	ScopeOne
	ScopeSubtree
)

// Subject identifies who a Rule's Subject pattern matches, replacing the
// teacher's bare string comparisons ("anonymous", "self", "*", ...) with
// a closed enum so a malformed subject string fails at load time instead
// of silently falling through to exact-DN comparison.
type Subject int

const (
	SubjectDN Subject = iota // SubjectTarget holds a specific bind DN
	SubjectAnonymous
	SubjectAuthenticated
	SubjectSelf
	SubjectAny
)

// Rule is one access control rule, first-match-wins against the ordered
// list in a Config, per the teacher's acl.ACL.
type Rule struct {
	Target     dn.DN
	TargetAny  bool // Target == "*"
	Scope      Scope
	Subject    Subject
	SubjectTarget dn.DN // only meaningful when Subject == SubjectDN
	Rights     Right
	Attributes []string // empty means every attribute
	Deny       bool
}

// AppliesToAttribute reports whether r governs attr, per the teacher's
// ACL.AppliesToAttribute.
func (r *Rule) AppliesToAttribute(attr string) bool {
	if len(r.Attributes) == 0 {
		return true
	}
	for _, a := range r.Attributes {
		if a == "*" || equalFold(a, attr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 32
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Config is the full ACL rule set, per the teacher's acl.Config.
type Config struct {
	DefaultAllow bool
	Rules        []*Rule
}

// NewConfig returns a Config with the teacher's default-deny policy.
func NewConfig() *Config {
	return &Config{DefaultAllow: false}
}

// AddRule appends a rule, preserving evaluation order.
func (c *Config) AddRule(rule *Rule) {
	c.Rules = append(c.Rules, rule)
}
