// Package domain is the composition root of an application: a type-keyed
// registry of systems, models and utilities, a private event bus, and the
// synchronous command/query dispatcher, with optional fallback to a parent
// domain for lookups.
//
// Everything runs on the caller's goroutine. A domain is not safe for
// concurrent use; hosts with several goroutines give each its own domain or
// serialize access.
package domain

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/zjrosen/strata/internal/cachemanager"
	"github.com/zjrosen/strata/internal/container"
	"github.com/zjrosen/strata/internal/eventbus"
	"github.com/zjrosen/strata/internal/log"
)

// State is the lifecycle state of a domain.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// Option configures a Domain.
type Option func(*Domain)

// WithMiddleware adds middleware applied to every command and query.
// The first middleware is the outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(d *Domain) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// WithQueryCache enables caching for queries that implement Cacheable.
func WithQueryCache(cache cachemanager.CacheManager[string, any]) Option {
	return func(d *Domain) {
		d.queryCache = cache
	}
}

// Domain owns one component container and one event bus.
type Domain struct {
	name      string
	state     State
	container *container.Container
	events    *eventbus.Bus
	parent    *Domain

	middlewares []Middleware
	queryCache  cachemanager.CacheManager[string, any]

	// release frees the singleton slot that built this domain, if any.
	release func()

	// commands counts commands currently executing, nested ones included.
	commands int

	processed atomic.Int64
	failed    atomic.Int64
}

// New creates an active, standalone domain.
func New(name string, opts ...Option) *Domain {
	d := &Domain{
		name:      name,
		state:     StateActive,
		container: container.New(),
		events:    eventbus.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	log.Debug(log.CatDomain, "domain created", "domain", name)
	return d
}

// Name returns the name given at construction.
func (d *Domain) Name() string {
	return d.name
}

// Domain returns d, so a *Domain is itself an Accessor.
func (d *Domain) Domain() *Domain {
	return d
}

// State returns the lifecycle state.
func (d *Domain) State() State {
	return d.state
}

// Events returns the domain's private event bus.
func (d *Domain) Events() *eventbus.Bus {
	return d.events
}

// Parent returns the fallback domain, or nil.
func (d *Domain) Parent() *Domain {
	return d.parent
}

// SetParent makes lookups that miss locally fall back to parent. Passing nil
// removes the fallback. Components are not shared or moved, and events are
// never inherited.
//
// Cyclic parent chains are not supported: SetParent panics when parent is d
// or already has d as an ancestor.
func (d *Domain) SetParent(parent *Domain) {
	for p := parent; p != nil; p = p.parent {
		if p == d {
			panic(fmt.Sprintf("domain: %q cannot be its own ancestor", d.name))
		}
	}
	d.parent = parent
	if parent != nil {
		log.Debug(log.CatDomain, "parent set", "domain", d.name, "parent", parent.name)
	}
}

// Stats counts dispatched commands and queries.
type Stats struct {
	Processed int64
	Failed    int64
}

// Stats returns dispatch counters. Cached query answers are not counted.
func (d *Domain) Stats() Stats {
	return Stats{
		Processed: d.processed.Load(),
		Failed:    d.failed.Load(),
	}
}

// Teardown runs Uninitialize on every system, then on every model, clears
// the registry and the event bus, and frees the singleton slot so the next
// Instance call builds a fresh domain. Systems go first because they may
// still use models while shutting down. Calling Teardown again is a no-op.
func (d *Domain) Teardown() {
	if d.state == StateTornDown {
		return
	}

	systems := slices.Collect(container.Components[System](d.container))
	models := slices.Collect(container.Components[Model](d.container))
	for _, s := range systems {
		s.Uninitialize()
	}
	for _, m := range models {
		m.Uninitialize()
	}

	d.container.Clear()
	d.events = eventbus.New()
	d.flushQueryCache()
	d.state = StateTornDown

	if d.release != nil {
		d.release()
		d.release = nil
	}

	log.Info(log.CatDomain, "domain torn down",
		"domain", d.name,
		"systems", len(systems),
		"models", len(models),
	)
}

// String renders the registered components grouped by role. The output is
// for humans and may change.
func (d *Domain) String() string {
	return d.container.Dump(
		container.Section{Title: "System", Match: isA[System]},
		container.Section{Title: "Model", Match: isA[Model]},
		container.Section{Title: "Utility", Match: isA[Utility]},
	)
}

func isA[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func (d *Domain) mustBeActive(op string) {
	if d.state != StateActive {
		panic(fmt.Sprintf("domain: %s on %s domain %q", op, d.state, d.name))
	}
}

func mustDomain(a Accessor) *Domain {
	if a == nil {
		panic("domain: nil accessor")
	}
	d := a.Domain()
	if d == nil {
		panic(fmt.Sprintf("domain: %s is not attached to a domain", container.TypeName(a)))
	}
	return d
}
