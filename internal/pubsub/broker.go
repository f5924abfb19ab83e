package pubsub

import (
	"context"
	"sync"
	"time"
)

const DefaultBufferSize = 64

// Broker fans published events out to buffered subscriber channels.
// Publish never blocks; a subscriber whose buffer is full misses the event
// and the miss is counted.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[chan Event[T]]struct{}
	buffer  int
	closed  bool
	seq     uint64
	dropped uint64
	clock   func() time.Time
}

var (
	_ Subscriber[any] = (*Broker[any])(nil)
	_ Publisher[any]  = (*Broker[any])(nil)
)

// NewBroker creates a broker whose subscribers buffer up to buffer events.
// A buffer below 1 uses DefaultBufferSize.
func NewBroker[T any](buffer int) *Broker[T] {
	if buffer < 1 {
		buffer = DefaultBufferSize
	}
	return &Broker[T]{
		subs:   make(map[chan Event[T]]struct{}),
		buffer: buffer,
		clock:  time.Now,
	}
}

// Subscribe returns a channel that receives events until ctx is done or the
// broker closes, after which the channel is closed. A closed broker hands
// out an already-closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.buffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.drop(ch)
	}()
	return ch
}

func (b *Broker[T]) drop(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish stamps payload with the next sequence number and offers it to
// every subscriber. Publishing on a closed broker is a no-op.
func (b *Broker[T]) Publish(topic Topic, payload T) {
	// Write lock: seq and dropped change, and sends must not race Close.
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.seq++
	ev := Event[T]{Topic: topic, Seq: b.seq, Payload: payload, At: b.clock()}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
		}
	}
}

// Close closes every subscriber channel. Later calls are no-ops.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	clear(b.subs)
}

// Stats reports the live subscriber count, the last sequence number
// published and the number of deliveries lost to full buffers.
func (b *Broker[T]) Stats() (subscribers int, published, dropped uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs), b.seq, b.dropped
}
