package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/strata/internal/cachemanager"
	"github.com/zjrosen/strata/internal/container"
	"github.com/zjrosen/strata/internal/eventbus"
	"github.com/zjrosen/strata/internal/log"
)

// Kind distinguishes commands from queries in middleware.
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
)

// Dispatch describes one command or query on its way through the middleware
// chain.
type Dispatch struct {
	Kind    Kind
	Name    string // type name, e.g. "IncrementCommand"
	ID      string // empty unless the message embeds BaseCommand or BaseQuery
	Domain  string
	Message any
}

// Handler executes a dispatched message.
type Handler interface {
	Handle(ctx context.Context, dispatch Dispatch) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, dispatch Dispatch) error

func (f HandlerFunc) Handle(ctx context.Context, dispatch Dispatch) error {
	return f(ctx, dispatch)
}

// Middleware wraps a Handler. Middleware must return the inner error
// unchanged so callers see exactly what Execute returned.
type Middleware func(next Handler) Handler

// ChainMiddleware applies middlewares to a handler in reverse order, so the
// first middleware is the outermost: ChainMiddleware(h, a, b) is a(b(h)).
func ChainMiddleware(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// SendCommand stamps cmd with d, then runs its Execute through the
// middleware chain and returns its error unchanged. The query cache is
// flushed before and after, whatever the outcome, and bypassed while the
// command runs.
func (d *Domain) SendCommand(ctx context.Context, cmd Command) error {
	if container.IsNil(cmd) {
		panic("domain: nil command")
	}
	defer d.beginCommand()()
	return d.dispatch(ctx, KindCommand, cmd, func(ctx context.Context) error {
		return cmd.Execute(ctx)
	})
}

// SendCommand sends cmd through the accessor's domain.
func SendCommand(ctx context.Context, a Accessor, cmd Command) error {
	return mustDomain(a).SendCommand(ctx, cmd)
}

// SendNewCommand sends a freshly constructed C. Pointer types are allocated.
func SendNewCommand[C Command](ctx context.Context, a Accessor) error {
	return mustDomain(a).SendCommand(ctx, eventbus.NewPayload[C]())
}

// SendCommandResult is SendCommand for commands that return a value.
func SendCommandResult[R any](ctx context.Context, a Accessor, cmd ResultCommand[R]) (R, error) {
	if container.IsNil(cmd) {
		panic("domain: nil command")
	}
	d := mustDomain(a)
	defer d.beginCommand()()

	var result R
	err := d.dispatch(ctx, KindCommand, cmd, func(ctx context.Context) error {
		r, err := cmd.Execute(ctx)
		result = r
		return err
	})
	return result, err
}

// SendQuery stamps q with the accessor's domain and returns its answer.
// Cacheable queries are answered from the query cache when one is
// configured; a cached answer skips Execute and the middleware chain.
func SendQuery[R any](ctx context.Context, a Accessor, q Query[R]) (R, error) {
	if container.IsNil(q) {
		panic("domain: nil query")
	}
	d := mustDomain(a)

	run := func(ctx context.Context) (R, error) {
		var result R
		err := d.dispatch(ctx, KindQuery, q, func(ctx context.Context) error {
			r, err := q.Execute(ctx)
			result = r
			return err
		})
		return result, err
	}

	c, ok := q.(Cacheable)
	if !ok || d.queryCache == nil || d.state != StateActive || d.commands > 0 {
		return run(ctx)
	}
	// Stamped even when the answer comes from the cache.
	q.SetDomain(d)

	key := container.TypeName(q) + ":" + c.CacheKey()
	v, hit, err := cachemanager.ReadThrough(ctx, d.queryCache, key, c.CacheTTL(), func(ctx context.Context) (any, error) {
		r, err := run(ctx)
		return r, err
	})
	if err != nil {
		var zero R
		return zero, err
	}
	result, ok := v.(R)
	if !ok {
		// Another query type produced this key; answer fresh.
		return run(ctx)
	}
	if hit {
		log.Debug(log.CatCache, "query answered from cache", "domain", d.name, "key", key)
	}
	return result, nil
}

func (d *Domain) dispatch(ctx context.Context, kind Kind, msg Binder, exec func(ctx context.Context) error) error {
	info := Dispatch{
		Kind:    kind,
		Name:    container.TypeName(msg),
		Domain:  d.name,
		Message: msg,
	}
	if d.state != StateActive {
		return fmt.Errorf("%w: %s %s on %q", ErrTornDown, kind, info.Name, d.name)
	}

	if s, ok := msg.(stamper); ok {
		s.stamp(time.Now())
	}
	if m, ok := msg.(interface{ ID() string }); ok {
		info.ID = m.ID()
	}
	msg.SetDomain(d)

	h := ChainMiddleware(HandlerFunc(func(ctx context.Context, _ Dispatch) error {
		return exec(ctx)
	}), d.middlewares...)

	d.processed.Add(1)
	err := h.Handle(ctx, info)
	if err != nil {
		d.failed.Add(1)
	}
	return err
}

// beginCommand marks a command as running and returns the func that ends
// it. Listeners reached from inside a command must not see answers cached
// before it started.
func (d *Domain) beginCommand() func() {
	d.flushQueryCache()
	d.commands++
	return func() {
		d.commands--
		d.flushQueryCache()
	}
}

func (d *Domain) flushQueryCache() {
	if d.queryCache == nil {
		return
	}
	if err := d.queryCache.Flush(context.Background()); err != nil {
		log.ErrorErr(log.CatCache, "query cache flush failed", err, "domain", d.name)
	}
}
