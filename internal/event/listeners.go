// Package event provides the synchronous multicast primitives shared by the
// event bus and bindable properties: an ordered listener list, unregister
// tokens, and a typed event channel.
package event

import (
	"reflect"
	"slices"
	"sync"
)

// FuncID identifies a callback by its code pointer.
//
// Go funcs are not comparable, so removal by callback falls back to this
// identity. Closures created from the same literal and method values of the
// same method share a FuncID; use the Unregisterer returned at registration
// when exact removal matters.
type FuncID uintptr

// FuncKey returns the identity key used by Listeners.Add for fn.
// It returns nil when fn is not a func or is a nil func.
func FuncKey(fn any) any {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil
	}
	return FuncID(v.Pointer())
}

type subscription[F any] struct {
	id  uint64
	fn  F
	key any
}

// Listeners is an ordered multicast list of callbacks of func type F.
//
// The same callback may be added any number of times; each Add creates an
// independent subscription that must be removed on its own. Mutations never
// write into a slice that was already handed out, so callers can dispatch
// over a Snapshot while callbacks add or remove subscriptions.
//
// The zero value is ready to use.
type Listeners[F any] struct {
	mu     sync.Mutex
	subs   []subscription[F]
	nextID uint64
}

// Add appends fn and returns its subscription id.
// It panics if fn is nil.
func (l *Listeners[F]) Add(fn F) uint64 {
	return l.AddKeyed(fn, FuncKey(fn))
}

// AddKeyed appends fn under an explicit identity key used by RemoveKey.
// It panics if fn is nil.
func (l *Listeners[F]) AddKeyed(fn F, key any) uint64 {
	if FuncKey(fn) == nil {
		panic("event: nil callback")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	next := make([]subscription[F], len(l.subs), len(l.subs)+1)
	copy(next, l.subs)
	l.subs = append(next, subscription[F]{id: l.nextID, fn: fn, key: key})
	return l.nextID
}

// Remove drops the subscription with the given id.
// Returns false if no such subscription exists.
func (l *Listeners[F]) Remove(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.subs, func(s subscription[F]) bool { return s.id == id })
	if idx < 0 {
		return false
	}
	l.subs = slices.Delete(slices.Clone(l.subs), idx, idx+1)
	return true
}

// RemoveKey drops the most recently added subscription whose identity key
// equals key. Returns false if none matches.
func (l *Listeners[F]) RemoveKey(key any) bool {
	if key == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.subs) - 1; i >= 0; i-- {
		if keysEqual(l.subs[i].key, key) {
			l.subs = slices.Delete(slices.Clone(l.subs), i, i+1)
			return true
		}
	}
	return false
}

// Snapshot returns the registered callbacks in registration order.
func (l *Listeners[F]) Snapshot() []F {
	l.mu.Lock()
	subs := l.subs
	l.mu.Unlock()

	fns := make([]F, len(subs))
	for i, s := range subs {
		fns[i] = s.fn
	}
	return fns
}

// Len returns the number of active subscriptions.
func (l *Listeners[F]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Clear drops every subscription. Tokens issued earlier become no-ops.
func (l *Listeners[F]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = nil
}

func keysEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
