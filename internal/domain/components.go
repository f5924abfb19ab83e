package domain

import (
	"reflect"

	"github.com/zjrosen/strata/internal/container"
	"github.com/zjrosen/strata/internal/log"
)

// RegisterSystem binds s to this domain, stores it under T (replacing any
// previous T) and runs its Initialize.
func RegisterSystem[T System](d *Domain, s T) {
	d.mustBeActive("register system")
	container.Register(d.container, s)
	s.SetDomain(d)
	log.Debug(log.CatDomain, "system registered", "domain", d.name, "type", container.TypeName(s))
	s.Initialize()
}

// RegisterModel binds m to this domain, stores it under T (replacing any
// previous T) and runs its Initialize.
func RegisterModel[T Model](d *Domain, m T) {
	d.mustBeActive("register model")
	container.Register(d.container, m)
	m.SetDomain(d)
	log.Debug(log.CatDomain, "model registered", "domain", d.name, "type", container.TypeName(m))
	m.Initialize()
}

// RegisterUtility stores u under T, replacing any previous T.
func RegisterUtility[T Utility](d *Domain, u T) {
	d.mustBeActive("register utility")
	container.Register(d.container, u)
	log.Debug(log.CatDomain, "utility registered", "domain", d.name, "type", container.TypeName(u))
}

// GetSystem finds the system registered under T in the accessor's domain or,
// failing that, its ancestors. A detached accessor always misses.
func GetSystem[T System](a Accessor) (T, bool) {
	return lookup[T](a)
}

// GetModel is GetSystem for models.
func GetModel[T Model](a Accessor) (T, bool) {
	return lookup[T](a)
}

// GetUtility is GetSystem for utilities.
func GetUtility[T Utility](a Accessor) (T, bool) {
	return lookup[T](a)
}

// MustGetSystem is GetSystem for systems the caller knows are registered.
func MustGetSystem[T System](a Accessor) T {
	s, ok := GetSystem[T](a)
	if !ok {
		panic("domain: system not registered: " + typeName[T]())
	}
	return s
}

// MustGetModel is GetModel for models the caller knows are registered.
func MustGetModel[T Model](a Accessor) T {
	m, ok := GetModel[T](a)
	if !ok {
		panic("domain: model not registered: " + typeName[T]())
	}
	return m
}

// MustGetUtility is GetUtility for utilities the caller knows are registered.
func MustGetUtility[T Utility](a Accessor) T {
	u, ok := GetUtility[T](a)
	if !ok {
		panic("domain: utility not registered: " + typeName[T]())
	}
	return u
}

func lookup[T any](a Accessor) (T, bool) {
	var zero T
	if a == nil {
		return zero, false
	}
	for d := a.Domain(); d != nil; d = d.parent {
		if v, ok := container.Get[T](d.container); ok {
			return v, true
		}
	}
	return zero, false
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
