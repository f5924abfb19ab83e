// Package eventbus dispatches typed events to subscribers synchronously.
//
// Each payload type gets its own channel, created on the first registration
// and kept for the life of the bus. Sending to a type nobody registered for
// is a silent no-op. Channels never see each other's payloads.
package eventbus

import (
	"reflect"
	"sync"

	"github.com/zjrosen/strata/internal/event"
	"github.com/zjrosen/strata/internal/log"
)

// Bus holds one event.Event per payload type.
type Bus struct {
	mu       sync.Mutex
	channels map[reflect.Type]any
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		channels: make(map[reflect.Type]any),
	}
}

var global = New()

// Global returns the process-wide bus shared by every global-event handler,
// independent of any domain.
func Global() *Bus {
	return global
}

// Handler is implemented by components that respond to a global event.
type Handler[T any] interface {
	OnEvent(T)
}

func channel[T any](b *Bus, create bool) *event.Event[T] {
	key := reflect.TypeFor[T]()

	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.channels[key]; ok {
		return ch.(*event.Event[T])
	}
	if !create {
		return nil
	}
	ch := &event.Event[T]{}
	b.channels[key] = ch
	log.Debug(log.CatEvents, "channel created", "type", key.String())
	return ch
}

// Register subscribes fn to payloads of type T and returns a token that
// removes exactly this subscription.
func Register[T any](b *Bus, fn func(T)) event.Unregisterer {
	return channel[T](b, true).Register(fn)
}

// Unregister removes one subscription of fn for T.
// No-op if the channel or the callback is absent.
func Unregister[T any](b *Bus, fn func(T)) {
	if ch := channel[T](b, false); ch != nil {
		ch.Unregister(fn)
	}
}

// RegisterHandler subscribes h.OnEvent, keyed by h so that handlers of the
// same type on different receivers can be removed independently. h must be
// of a comparable type (usually a pointer); anything else panics, since
// UnregisterHandler could never match it.
func RegisterHandler[T any](b *Bus, h Handler[T]) event.Unregisterer {
	if h == nil {
		panic("eventbus: nil handler")
	}
	if t := reflect.TypeOf(h); !t.Comparable() {
		panic("eventbus: handler of non-comparable type " + t.String())
	}
	return channel[T](b, true).RegisterKeyed(h.OnEvent, h)
}

// UnregisterHandler removes one subscription made by RegisterHandler for h.
func UnregisterHandler[T any](b *Bus, h Handler[T]) {
	if ch := channel[T](b, false); ch != nil {
		ch.UnregisterKey(h)
	}
}

// RegisterGlobal subscribes h on the process-wide bus.
func RegisterGlobal[T any](h Handler[T]) event.Unregisterer {
	return RegisterHandler(global, h)
}

// UnregisterGlobal removes h from the process-wide bus.
func UnregisterGlobal[T any](h Handler[T]) {
	UnregisterHandler(global, h)
}

// Send delivers payload to every callback registered for T at call time,
// in registration order. A panic in a callback propagates to the caller.
func Send[T any](b *Bus, payload T) {
	if ch := channel[T](b, false); ch != nil {
		ch.Trigger(payload)
	}
}

// SendNew sends a default-constructed payload of type T.
func SendNew[T any](b *Bus) {
	if ch := channel[T](b, false); ch != nil {
		ch.Trigger(NewPayload[T]())
	}
}

// Contains reports whether a channel for T exists.
func Contains[T any](b *Bus) bool {
	return channel[T](b, false) != nil
}

// Listeners returns the number of subscriptions for T.
func Listeners[T any](b *Bus) int {
	if ch := channel[T](b, false); ch != nil {
		return ch.Len()
	}
	return 0
}

// Channels returns the number of payload types with a channel.
func (b *Bus) Channels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.channels)
}

// NewPayload returns the default value of T: a pointer to a fresh zero value
// when T is a pointer type, otherwise T's zero value.
func NewPayload[T any]() T {
	var zero T
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(T)
	}
	return zero
}
