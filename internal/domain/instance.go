package domain

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zjrosen/strata/internal/container"
	"github.com/zjrosen/strata/internal/eventbus"
	"github.com/zjrosen/strata/internal/log"
)

// Definition describes an application domain. Init registers its
// components and runs exactly once per singleton lifetime.
type Definition interface {
	Init(d *Domain)
}

// Configurer is optionally implemented by a Definition to supply options
// for the domain Instance builds.
type Configurer interface {
	Options() []Option
}

type slot struct {
	once   sync.Once
	domain atomic.Pointer[Domain]
}

var (
	instancesMu sync.Mutex
	instances   = map[reflect.Type]*slot{}
)

// Instance returns the singleton domain for definition D, building it and
// running D's Init on first access. Concurrent first accesses build once.
// Init must not call Instance for its own D.
func Instance[D Definition]() *Domain {
	key := reflect.TypeFor[D]()

	instancesMu.Lock()
	s, ok := instances[key]
	if !ok {
		s = &slot{}
		instances[key] = s
	}
	instancesMu.Unlock()

	s.once.Do(func() {
		built := false
		defer func() {
			if !built {
				releaseSlot(key, s)
			}
		}()

		def := eventbus.NewPayload[D]()
		var opts []Option
		if c, ok := any(def).(Configurer); ok {
			opts = c.Options()
		}

		d := New(container.TypeName(def), opts...)
		d.release = func() { releaseSlot(key, s) }
		def.Init(d)
		log.Info(log.CatDomain, "domain built", "domain", d.name, "components", d.container.Len())

		s.domain.Store(d)
		built = true
	})

	d := s.domain.Load()
	if d == nil {
		// Init panicked in another goroutine and the slot was released.
		return Instance[D]()
	}
	return d
}

// Existing returns D's singleton if it has been built and not torn down.
func Existing[D Definition]() (*Domain, bool) {
	instancesMu.Lock()
	s, ok := instances[reflect.TypeFor[D]()]
	instancesMu.Unlock()
	if !ok {
		return nil, false
	}
	// A slot mid-build has no domain yet.
	d := s.domain.Load()
	return d, d != nil
}

// ResetInstances tears down every singleton and forgets them, so the next
// Instance call for any definition builds from scratch.
func ResetInstances() {
	instancesMu.Lock()
	slots := instances
	instances = map[reflect.Type]*slot{}
	instancesMu.Unlock()

	for _, s := range slots {
		if d := s.domain.Load(); d != nil {
			d.Teardown()
		}
	}
}

func releaseSlot(key reflect.Type, s *slot) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	if instances[key] == s {
		delete(instances, key)
	}
}
