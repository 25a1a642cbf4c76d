package interceptor

import "sync"

// TriggerFunc is a stored procedure bound to matching change events, per
// spec.md §4.5 stage 13 "executes stored procedures bound to matching
// events." It runs synchronously once the mutation has persisted and
// before the Event stage (which wraps this one) publishes that mutation's
// notification, so a directory operation a trigger issues through the
// chain publishes its own event ahead of the event that caused it.
type TriggerFunc func(ChangeEvent) error

// Trigger pairs a stored procedure with the WatchFilter selecting the
// events it fires on.
type Trigger struct {
	Name   string
	Filter WatchFilter
	Run    TriggerFunc
}

// TriggerRegistry holds the triggers bound for one directory.
type TriggerRegistry struct {
	mu       sync.RWMutex
	triggers []Trigger
}

// NewTriggerRegistry constructs an empty registry.
func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{}
}

// Register adds t to the registry.
func (r *TriggerRegistry) Register(t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, t)
}

// Unregister removes every trigger with the given name.
func (r *TriggerRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.triggers[:0]
	for _, t := range r.triggers {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	r.triggers = kept
}

func (r *TriggerRegistry) fire(ev ChangeEvent) error {
	r.mu.RLock()
	triggers := append([]Trigger(nil), r.triggers...)
	r.mu.RUnlock()

	for _, t := range triggers {
		if !t.Filter.Matches(ev) {
			continue
		}
		if err := t.Run(ev); err != nil {
			return err
		}
	}
	return nil
}

// triggerStage is spec.md §4.5 stage 13, the chain's final stage.
type triggerStage struct {
	registry *TriggerRegistry
}

// NewTriggerStage constructs the Trigger interceptor over registry.
func NewTriggerStage(registry *TriggerRegistry) Interceptor {
	return &triggerStage{registry: registry}
}

func (s *triggerStage) Name() string { return "trigger" }

func (s *triggerStage) Handle(ctx *OperationContext, next Next) error {
	switch ctx.Op {
	case OpAdd, OpDelete, OpModify, OpModifyDN:
		if err := next(); err != nil {
			return err
		}
		ev := ChangeEvent{Operation: ctx.Op, Target: ctx.Target}
		if ctx.Op == OpAdd {
			ev.Entry = ctx.NewEntry
		}
		return s.registry.fire(ev)
	default:
		return next()
	}
}
