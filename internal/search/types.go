package search

import (
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/filter"
)

// Scope is a search's scope, per RFC 4511 §4.5.1.2.
type Scope int

const (
	BaseObject Scope = iota
	SingleLevel
	WholeSubtree
)

// AliasDerefMode controls when alias entries are transparently resolved
// to their target, per spec.md §4.4 and RFC 4511 §4.5.1.3.
type AliasDerefMode int

const (
	Never AliasDerefMode = iota
	FindingBase
	InSearch
	Always
)

// Attribute-selection sentinels, per RFC 4511 §4.5.1.8 and RFC 2251.
const (
	AllUserAttributes   = "*"
	AllOperationalAttrs = "+"
	NoAttributes        = "1.1"
)

// Request describes one search operation.
type Request struct {
	Base       dn.DN
	Scope      Scope
	Filter     *filter.Filter
	Deref      AliasDerefMode
	SizeLimit  int           // 0 = unbounded
	TimeLimit  time.Duration // 0 = unbounded
	Attributes []string      // nil/empty behaves as [AllUserAttributes]
}
