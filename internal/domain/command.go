package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Command is a unit of mutating work. The domain stamps itself onto the
// command before Execute runs, so Execute may use the Get*, Send* and event
// helpers with the command as Accessor. Embed BaseCommand.
type Command interface {
	Accessor
	Binder
	Execute(ctx context.Context) error
}

// ResultCommand is a Command that also produces a value.
type ResultCommand[R any] interface {
	Accessor
	Binder
	Execute(ctx context.Context) (R, error)
}

// Query is a read-only request for a value. Embed BaseQuery.
type Query[R any] interface {
	Accessor
	Binder
	Execute(ctx context.Context) (R, error)
}

// Cacheable marks a query whose answer may be served from the domain's
// query cache. Any command sent through the domain invalidates the cache.
type Cacheable interface {
	CacheKey() string
	CacheTTL() time.Duration
}

// stamper is satisfied by types embedding BaseCommand or BaseQuery.
type stamper interface {
	stamp(now time.Time)
}

type message struct {
	bound
	id        string
	createdAt time.Time
}

func (m *message) stamp(now time.Time) {
	if m.id == "" {
		m.id = uuid.New().String()
		m.createdAt = now
	}
}

// ID returns the identifier assigned on first dispatch, or "" before that.
func (m *message) ID() string {
	return m.id
}

// CreatedAt returns when the message was first dispatched.
func (m *message) CreatedAt() time.Time {
	return m.createdAt
}

// BaseCommand provides the domain binding and identity of a command.
type BaseCommand struct {
	message
}

// BaseQuery provides the domain binding and identity of a query.
type BaseQuery struct {
	message
}
