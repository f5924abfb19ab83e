// Package bindable provides an observable value cell.
//
// A Property notifies its listeners with (previous, current) whenever a write
// changes the value under the active comparer. Notifications are synchronous
// and independent of any event bus.
package bindable

import (
	"fmt"

	"github.com/zjrosen/strata/internal/event"
)

// ChangeFunc receives the previous and current value after a change.
type ChangeFunc[T any] func(prev, cur T)

// ReadOnly is the observable side of a Property, for models that want to
// expose a value without letting callers write it.
type ReadOnly[T any] interface {
	event.Signal
	Value() T
	Register(fn ChangeFunc[T]) event.Unregisterer
	RegisterWithNotify(fn ChangeFunc[T]) event.Unregisterer
	Unregister(fn ChangeFunc[T])
}

// Property is a mutable value cell with change notification.
// It is not safe for concurrent writes.
type Property[T any] struct {
	value     T
	comparer  Comparer[T]
	listeners event.Listeners[ChangeFunc[T]]
}

var _ ReadOnly[int] = (*Property[int])(nil)

// New creates a property holding initial. No notification is raised.
func New[T any](initial T) *Property[T] {
	return &Property[T]{value: initial}
}

// WithComparer sets a comparer for this property only, taking precedence
// over the type-wide comparer. Returns p for chaining.
func (p *Property[T]) WithComparer(cmp Comparer[T]) *Property[T] {
	p.comparer = cmp
	return p
}

// Value returns the current value.
func (p *Property[T]) Value() T {
	return p.value
}

// SetValue stores v and notifies listeners when it differs from the current
// value. Nil to nil is never a change; nil to non-nil always is.
func (p *Property[T]) SetValue(v T) {
	prev := p.value
	if !p.changed(prev, v) {
		return
	}
	p.value = v
	// A listener may set the value again; the rest of this round still
	// sees the change it was started for.
	for _, fn := range p.listeners.Snapshot() {
		fn(prev, v)
	}
}

// SetSilently stores v without notifying anyone.
func (p *Property[T]) SetSilently(v T) {
	p.value = v
}

func (p *Property[T]) changed(prev, next T) bool {
	prevNil := isNil(prev)
	if prevNil && isNil(next) {
		return false
	}
	if prevNil {
		return true
	}
	return !p.equal(prev, next)
}

func (p *Property[T]) equal(a, b T) bool {
	if p.comparer != nil {
		return p.comparer(a, b)
	}
	if cmp := typeComparer[T](); cmp != nil {
		return cmp(a, b)
	}
	return DefaultEqual(a, b)
}

// Register subscribes fn to changes. The same fn registered twice is
// notified twice and needs two unregistrations.
func (p *Property[T]) Register(fn ChangeFunc[T]) event.Unregisterer {
	id := p.listeners.Add(fn)
	return event.NewToken(func() { p.listeners.Remove(id) })
}

// RegisterWithNotify calls fn(current, current) once, then subscribes it.
func (p *Property[T]) RegisterWithNotify(fn ChangeFunc[T]) event.Unregisterer {
	if fn == nil {
		panic("bindable: nil callback")
	}
	cur := p.value
	fn(cur, cur)
	return p.Register(fn)
}

// Unregister removes one subscription of fn. No-op if absent.
func (p *Property[T]) Unregister(fn ChangeFunc[T]) {
	p.listeners.RemoveKey(event.FuncKey(fn))
}

// RegisterSignal subscribes fn to changes, ignoring the values.
func (p *Property[T]) RegisterSignal(fn func()) event.Unregisterer {
	if fn == nil {
		panic("bindable: nil callback")
	}
	return p.Register(func(T, T) { fn() })
}

// Listeners returns the number of subscriptions.
func (p *Property[T]) Listeners() int {
	return p.listeners.Len()
}

// String formats the current value.
func (p *Property[T]) String() string {
	return fmt.Sprint(p.value)
}
