// Package container provides the type-keyed component store owned by a domain.
package container

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// Container stores at most one instance per registration type.
// It is not safe for concurrent mutation.
type Container struct {
	instances map[reflect.Type]any
	order     []reflect.Type
}

// New creates an empty container.
func New() *Container {
	return &Container{
		instances: make(map[reflect.Type]any),
	}
}

// Register stores instance under the type argument T, replacing any prior
// entry for T. The replaced entry keeps its position in Keys order.
// It panics if instance is nil.
func Register[T any](c *Container, instance T) {
	if IsNil(instance) {
		panic(fmt.Sprintf("container: register nil %s", reflect.TypeFor[T]()))
	}
	key := reflect.TypeFor[T]()
	if _, exists := c.instances[key]; !exists {
		c.order = append(c.order, key)
	}
	c.instances[key] = instance
}

// Get returns the instance registered under T.
// The second result is false when nothing is registered for T.
func Get[T any](c *Container) (T, bool) {
	var zero T
	instance, ok := c.instances[reflect.TypeFor[T]()]
	if !ok {
		return zero, false
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Lookup is the untyped form of Get, keyed by an explicit type.
func (c *Container) Lookup(key reflect.Type) (any, bool) {
	instance, ok := c.instances[key]
	return instance, ok
}

// Components yields every stored instance whose dynamic type satisfies T,
// regardless of the type it was registered under, in registration order.
// The sequence reads the container lazily as it is iterated.
func Components[T any](c *Container) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, key := range c.order {
			typed, ok := c.instances[key].(T)
			if !ok {
				continue
			}
			if !yield(typed) {
				return
			}
		}
	}
}

// Keys returns the registration types in registration order.
func (c *Container) Keys() []reflect.Type {
	return append([]reflect.Type(nil), c.order...)
}

// Len returns the number of stored instances.
func (c *Container) Len() int {
	return len(c.instances)
}

// Clear drops every instance. No lifecycle hooks run.
func (c *Container) Clear() {
	clear(c.instances)
	c.order = nil
}

// Section names a group of components for Dump.
type Section struct {
	Title string
	Match func(any) bool
}

// Dump renders the stored components grouped by section:
//
//	----Title----
//	TypeName
//
// Sections with no matching component are omitted. The format is meant for
// humans and may change.
func (c *Container) Dump(sections ...Section) string {
	var sb strings.Builder
	for _, section := range sections {
		var names []string
		for _, key := range c.order {
			instance := c.instances[key]
			if section.Match(instance) {
				names = append(names, TypeName(instance))
			}
		}
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "----%s----\n", section.Title)
		for _, name := range names {
			sb.WriteString(name)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// TypeName returns the bare type name of v, without package path or pointer marks.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// IsNil reports whether v is nil or a typed nil of a nillable kind.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
