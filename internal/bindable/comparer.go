package bindable

import (
	"reflect"
	"sync"
)

// Comparer reports whether two values are equal for change detection.
type Comparer[T any] func(a, b T) bool

var (
	comparersMu sync.RWMutex
	comparers   = map[reflect.Type]any{}
)

// SetComparer installs the comparer used by every Property[T] without an
// instance override. It takes effect for all change checks from now on.
// A nil comparer restores the default.
func SetComparer[T any](cmp Comparer[T]) {
	key := reflect.TypeFor[T]()

	comparersMu.Lock()
	defer comparersMu.Unlock()

	if cmp == nil {
		delete(comparers, key)
		return
	}
	comparers[key] = cmp
}

// ResetComparer restores the default comparer for T.
func ResetComparer[T any]() {
	SetComparer[T](nil)
}

func typeComparer[T any]() Comparer[T] {
	comparersMu.RLock()
	defer comparersMu.RUnlock()

	if cmp, ok := comparers[reflect.TypeFor[T]()]; ok {
		return cmp.(Comparer[T])
	}
	return nil
}

// DefaultEqual is the comparer used when none is configured. Values with an
// Equal(T) bool method (time.Time and friends) are compared with it;
// everything else with reflect.DeepEqual.
func DefaultEqual[T any](a, b T) bool {
	if eq, ok := any(a).(interface{ Equal(T) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
