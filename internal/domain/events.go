package domain

import (
	"github.com/zjrosen/strata/internal/event"
	"github.com/zjrosen/strata/internal/eventbus"
)

// RegisterEvent subscribes fn to events of type T on the accessor's domain.
// Events never cross domains, parent or child.
func RegisterEvent[T any](a Accessor, fn func(T)) event.Unregisterer {
	return eventbus.Register(mustDomain(a).events, fn)
}

// UnregisterEvent removes the most recent registration of fn for T.
func UnregisterEvent[T any](a Accessor, fn func(T)) {
	eventbus.Unregister(mustDomain(a).events, fn)
}

// SendEvent delivers e to every current T subscriber, in registration order.
func SendEvent[T any](a Accessor, e T) {
	eventbus.Send(mustDomain(a).events, e)
}

// SendNewEvent sends a default-constructed T.
func SendNewEvent[T any](a Accessor) {
	eventbus.SendNew[T](mustDomain(a).events)
}
