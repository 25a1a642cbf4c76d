package interceptor

import (
	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/search"
)

// OpType identifies the kind of directory operation an OperationContext
// carries through the chain.
type OpType int

const (
	OpBind OpType = iota
	OpAdd
	OpDelete
	OpModify
	OpModifyDN // rename and/or move
	OpSearch
	OpCompare
)

func (t OpType) String() string {
	switch t {
	case OpBind:
		return "bind"
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpModify:
		return "modify"
	case OpModifyDN:
		return "modifyDN"
	case OpSearch:
		return "search"
	case OpCompare:
		return "compare"
	default:
		return "unknown"
	}
}

// OperationContext carries everything one pass through the chain needs:
// the operation's payload, the session's resolved principal, and the
// stage-control knobs (bypass set, abandon flag), per spec.md §4.5 and
// §5 "every OperationContext carries an abandoned flag". It deliberately
// lives in this package rather than internal/session, so internal/session
// can depend on internal/interceptor without a cycle; internal/session
// owns the request/response wire shape, this package owns what a stage is
// allowed to read and rewrite while a request is in flight.
type OperationContext struct {
	Op OpType

	// Principal is the bound DN resolved by the Authentication stage; the
	// zero DN means anonymous. BindPassword is only set on OpBind and is
	// cleared by the Authentication stage once verified.
	Principal    dn.DN
	BindPassword string

	// Target is the DN named by the request (Add's own DN, Delete/Modify/
	// ModifyDN/Compare's target, Search's base).
	Target dn.DN

	// Add payload.
	NewEntry *entry.Entry

	// Modify payload.
	Mods []entry.Modification

	// ModifyDN payload.
	NewParent        dn.DN
	NewRDN           dn.RDN
	DeleteOldRDNAttr bool
	HasNewParent     bool // false => Rename in place, true => Move/MoveAndRename

	// Search payload; Visit is called once per matching entry that
	// survives every stage's read-time filtering (ACL attribute
	// filtering, collective attribute fusion).
	SearchRequest search.Request
	Visit         func(search.Result) error

	// Compare payload.
	CompareAttr  string
	CompareValue entry.Value

	// ManageDsaIT suppresses referral interception, per RFC 4511 §4.1.11.
	ManageDsaIT bool

	// Bypass names interceptors this call skips entirely, e.g. the
	// schema-bootstrap path bypassing "accesscontrol" and "schema".
	Bypass map[string]bool

	// Abandoned is set concurrently by the session layer handling an LDAP
	// Abandon request. Neither Execute, any stage, nor the Search Engine
	// reads it, so setting it does not stop an operation already in flight.
	Abandoned *AbandonFlag

	// CompareResult accumulates stage-visible outcome for the Compare operation,
	// since it has no natural "entry returned" shape.
	CompareResult bool
}

// Bypasses reports whether name is in ctx's bypass set.
func (ctx *OperationContext) Bypasses(name string) bool {
	return ctx.Bypass != nil && ctx.Bypass[name]
}

// Next invokes the remainder of the chain (the next interceptor, or the
// core partition/search operation once every stage has run).
type Next func() error

// Interceptor is one named stage of the chain.
type Interceptor interface {
	Name() string
	Handle(ctx *OperationContext, next Next) error
}

// Chain is the ordered pipeline of spec.md §4.5's canonical stages.
type Chain struct {
	stages []Interceptor
}

// NewChain builds a Chain in the given order. Canonical order per
// spec.md §4.5: Normalization, Authentication, Referral, AccessControl,
// DefaultAuthorization, Exception, Schema, OperationalAttributes,
// Subentry, CollectiveAttributes, ChangeLog, Event, Trigger.
func NewChain(stages ...Interceptor) *Chain {
	return &Chain{stages: append([]Interceptor{}, stages...)}
}

// Stages returns the chain's interceptors in dispatch order.
func (c *Chain) Stages() []Interceptor {
	return append([]Interceptor{}, c.stages...)
}

// Execute dispatches ctx through every non-bypassed stage head-to-tail,
// finally invoking core — the actual Partition/Search Engine call — once
// every stage has called its next continuation.
func (c *Chain) Execute(ctx *OperationContext, core Next) error {
	fn := core
	for i := len(c.stages) - 1; i >= 0; i-- {
		stage := c.stages[i]
		if ctx.Bypasses(stage.Name()) {
			continue
		}
		downstream := fn
		fn = func() error { return stage.Handle(ctx, downstream) }
	}
	return fn()
}

// AbandonFlag is a concurrency-safe cancellation signal one OperationContext
// shares between the session goroutine issuing Abandon and the goroutine
// servicing the original operation.
type AbandonFlag struct {
	v int32
}

// Set marks the operation abandoned.
func (f *AbandonFlag) Set() {
	if f == nil {
		return
	}
	storeAbandon(f)
}

// IsSet reports whether the operation has been abandoned.
func (f *AbandonFlag) IsSet() bool {
	if f == nil {
		return false
	}
	return loadAbandon(f)
}
