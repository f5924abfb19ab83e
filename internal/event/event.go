package event

// Signal is the value-agnostic side of an event source: a listener that does
// not care about the payload can still subscribe.
type Signal interface {
	RegisterSignal(fn func()) Unregisterer
}

// Event is a typed multicast channel. The zero value is ready to use.
type Event[T any] struct {
	listeners Listeners[func(T)]
}

// Register appends fn and returns a token that removes exactly this subscription.
func (e *Event[T]) Register(fn func(T)) Unregisterer {
	id := e.listeners.Add(fn)
	return NewToken(func() { e.listeners.Remove(id) })
}

// RegisterKeyed appends fn under an explicit identity key so it can later be
// removed with UnregisterKey.
func (e *Event[T]) RegisterKeyed(fn func(T), key any) Unregisterer {
	id := e.listeners.AddKeyed(fn, key)
	return NewToken(func() { e.listeners.Remove(id) })
}

// Unregister removes one subscription of fn. No-op if fn is not registered.
func (e *Event[T]) Unregister(fn func(T)) {
	e.listeners.RemoveKey(FuncKey(fn))
}

// UnregisterKey removes one subscription registered under key.
func (e *Event[T]) UnregisterKey(key any) {
	e.listeners.RemoveKey(key)
}

// RegisterSignal subscribes fn ignoring the payload.
func (e *Event[T]) RegisterSignal(fn func()) Unregisterer {
	if fn == nil {
		panic("event: nil callback")
	}
	return e.Register(func(T) { fn() })
}

// Trigger invokes every callback registered at call time, in registration order.
func (e *Event[T]) Trigger(payload T) {
	for _, fn := range e.listeners.Snapshot() {
		fn(payload)
	}
}

// Len returns the number of subscriptions.
func (e *Event[T]) Len() int {
	return e.listeners.Len()
}

// Clear drops every subscription.
func (e *Event[T]) Clear() {
	e.listeners.Clear()
}
