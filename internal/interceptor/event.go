package interceptor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/obadir/oba/internal/dn"
	"github.com/obadir/oba/internal/entry"
	"github.com/obadir/oba/internal/schema"
	"github.com/obadir/oba/internal/search"
)

// ChangeEvent is one published mutation, delivered to every Subscriber
// whose WatchFilter matches it.
//
// Distilled from the teacher's internal/storage/stream.ChangeEvent,
// generalized from a raw DN string plus storage.Entry to the typed
// dn.DN/entry.Entry model, and from a fixed insert/update/delete/modifyDN
// OperationType to this package's own OpType (so stream and interceptor
// share one operation vocabulary instead of two parallel enums).
type ChangeEvent struct {
	Token     uint64
	Operation OpType
	Target    dn.DN
	Entry     *entry.Entry // the added entry for OpAdd; nil for every other operation
	OldTarget dn.DN        // set for OpModifyDN
	At        time.Time
}

// WatchFilter selects the (base, scope, filter) criterion a Subscriber
// watches, per spec.md §4.5 stage 12 "registered listeners matching a
// (base, scope, filter) criterion."
type WatchFilter struct {
	Base       dn.DN
	Scope      search.Scope
	Operations []OpType // empty matches every operation

	registry *schema.Registry
}

// NewWatchFilter constructs a filter scoped at base, normalized against
// registry for schema-aware DN comparison.
func NewWatchFilter(base dn.DN, scope search.Scope, registry *schema.Registry, ops ...OpType) WatchFilter {
	return WatchFilter{Base: base, Scope: scope, Operations: ops, registry: registry}
}

// Matches reports whether ev falls within f's base/scope and operation
// set.
func (f WatchFilter) Matches(ev ChangeEvent) bool {
	if len(f.Operations) > 0 {
		found := false
		for _, op := range f.Operations {
			if op == ev.Operation {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	cmp := dn.Comparator(f.registry)
	switch f.Scope {
	case search.BaseObject:
		return ev.Target.Equal(f.Base, cmp)
	case search.SingleLevel:
		parent, ok := ev.Target.Parent()
		return ok && parent.Equal(f.Base, cmp)
	default: // WholeSubtree
		return ev.Target.Equal(f.Base, cmp) || ev.Target.IsDescendantOf(f.Base, cmp)
	}
}

// Subscriber receives events matching its WatchFilter on Events, a
// buffered channel the Event Broker drops onto a best-effort basis: a
// slow subscriber loses the oldest unread event rather than blocking a
// mutation, matching the teacher's Subscriber backpressure idiom.
type Subscriber struct {
	ID     uint64
	Filter WatchFilter
	Events chan ChangeEvent
	closed atomic.Bool
}

func newSubscriber(id uint64, filter WatchFilter, bufSize int) *Subscriber {
	return &Subscriber{ID: id, Filter: filter, Events: make(chan ChangeEvent, bufSize)}
}

func (s *Subscriber) send(ev ChangeEvent) {
	if s.closed.Load() {
		return
	}
	select {
	case s.Events <- ev:
	default:
		select {
		case <-s.Events:
		default:
		}
		select {
		case s.Events <- ev:
		default:
		}
	}
}

// Close releases the subscriber; Events is closed and further sends are
// no-ops.
func (s *Subscriber) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.Events)
	}
}

// defaultEventBufferSize is the per-subscriber channel capacity, mirroring
// the teacher's stream.DefaultBufferSize.
const defaultEventBufferSize = 256

// EventBroker fans out ChangeEvents to registered Subscribers, assigning
// each event a monotonic resume token.
type EventBroker struct {
	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextID      uint64
	nextToken   uint64
}

// NewEventBroker constructs an empty broker.
func NewEventBroker() *EventBroker {
	return &EventBroker{subscribers: make(map[uint64]*Subscriber)}
}

// Subscribe registers a new Subscriber watching filter.
func (b *EventBroker) Subscribe(filter WatchFilter) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := newSubscriber(b.nextID, filter, defaultEventBufferSize)
	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes and closes a Subscriber.
func (b *EventBroker) Unsubscribe(id uint64) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// Publish stamps ev with the next resume token and timestamp and
// delivers it to every matching subscriber.
func (b *EventBroker) Publish(ev ChangeEvent) ChangeEvent {
	b.mu.Lock()
	b.nextToken++
	ev.Token = b.nextToken
	ev.At = time.Now()
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		if sub.Filter.Matches(ev) {
			sub.send(ev)
		}
	}
	return ev
}

// eventStage is spec.md §4.5 stage 12: after a mutation persists (and
// before the Change Log stage, which wraps this one, records it), it
// publishes a ChangeEvent to every registered Subscriber whose
// WatchFilter matches.
type eventStage struct {
	broker *EventBroker
}

// NewEventStage constructs the Event interceptor over broker.
func NewEventStage(broker *EventBroker) Interceptor {
	return &eventStage{broker: broker}
}

func (s *eventStage) Name() string { return "event" }

func (s *eventStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd, OpDelete, OpModify, OpModifyDN:
		if err := next(); err != nil {
			return err
		}
		ev := ChangeEvent{Operation: ctx.Op, Target: ctx.Target}
		if ctx.Op == OpAdd {
			ev.Entry = ctx.NewEntry
		}
		if ctx.Op == OpModifyDN {
			ev.OldTarget = ctx.Target
			if ctx.HasNewParent {
				ev.Target = ctx.NewParent.AppendParent(ctx.NewRDN)
			} else if parent, ok := ctx.Target.Parent(); ok {
				ev.Target = parent.AppendParent(ctx.NewRDN)
			}
		}
		s.broker.Publish(ev)
		return nil
	default:
		return next()
	}
}
