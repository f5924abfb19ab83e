// Package pubsub provides an asynchronous, channel-based broker used to
// stream diagnostics (log entries) to Bubble Tea programs.
//
// It is separate from the synchronous event bus: nothing in the domain core
// dispatches through it.
package pubsub

import (
	"context"
	"time"
)

// Topic names the stream an event was published on.
type Topic string

// TopicLog carries formatted log entries.
const TopicLog Topic = "log"

// Event is one published payload. Seq increases by one per Publish on a
// broker, so a subscriber can tell how many events it missed.
type Event[T any] struct {
	Topic   Topic
	Seq     uint64
	Payload T
	At      time.Time
}

type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

type Publisher[T any] interface {
	Publish(topic Topic, payload T)
}
