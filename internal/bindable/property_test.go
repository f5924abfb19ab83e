package bindable

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type change[T any] struct{ prev, cur T }

func record[T any](p *Property[T]) *[]change[T] {
	var got []change[T]
	p.Register(func(prev, cur T) { got = append(got, change[T]{prev, cur}) })
	return &got
}

func TestSetValue_NotifiesPrevAndCurrent(t *testing.T) {
	p := New("hello")
	got := record(p)

	p.SetValue("world")

	require.Equal(t, []change[string]{{"hello", "world"}}, *got)
	require.Equal(t, "world", p.Value())
}

func TestSetValue_SameValueTwiceNotifiesOnce(t *testing.T) {
	p := New(0)
	got := record(p)

	p.SetValue(5)
	p.SetValue(5)

	require.Len(t, *got, 1)
}

func TestSetValue_EqualValueDoesNotNotify(t *testing.T) {
	p := New([]int{1, 2})
	got := record(p)

	p.SetValue([]int{1, 2})
	require.Empty(t, *got, "structurally equal slices are not a change")
}

func TestSetValue_StoresBeforeNotifying(t *testing.T) {
	p := New(1)
	var seen int
	p.Register(func(_, _ int) { seen = p.Value() })

	p.SetValue(2)
	require.Equal(t, 2, seen)
}

func TestSetSilently(t *testing.T) {
	p := New("a")
	got := record(p)

	p.SetSilently("b")
	require.Empty(t, *got)
	require.Equal(t, "b", p.Value())
}

func TestNilTransitions(t *testing.T) {
	type node struct{ v int }

	p := New[*node](nil)
	got := record(p)

	p.SetValue(nil)
	require.Empty(t, *got, "nil to nil is a no-op")

	n := &node{v: 1}
	p.SetValue(n)
	require.Len(t, *got, 1, "nil to non-nil always notifies")

	p.SetValue(nil)
	require.Len(t, *got, 2)
	require.Same(t, n, (*got)[1].prev)
}

func TestNilTransition_IgnoresComparer(t *testing.T) {
	type node struct{}
	p := New[*node](nil).WithComparer(func(a, b *node) bool { return true })
	got := record(p)

	p.SetValue(&node{})
	require.Len(t, *got, 1)

	p.SetValue(&node{})
	require.Len(t, *got, 1, "the comparer decides once the prior value is non-nil")
}

func TestDefaultEqual_UsesEqualMethod(t *testing.T) {
	a := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("plus2", 2*60*60))

	p := New(a)
	got := record(p)
	p.SetValue(b)

	require.Empty(t, *got, "same instant in another zone is not a change")
}

func TestComparer_TypeWideAndOverride(t *testing.T) {
	type label string
	t.Cleanup(ResetComparer[label])

	caseless := func(a, b label) bool { return strings.EqualFold(string(a), string(b)) }

	p := New[label]("Hello")
	got := record(p)

	p.SetValue("HELLO")
	require.Len(t, *got, 1, "default comparer is case sensitive")

	SetComparer[label](caseless)
	p.SetValue("hello")
	require.Len(t, *got, 1, "type-wide comparer applies to existing properties")

	p.WithComparer(func(a, b label) bool { return a == b })
	p.SetValue("Hello")
	require.Len(t, *got, 2, "instance comparer takes precedence")

	ResetComparer[label]()
	p.WithComparer(nil)
	p.SetValue("HELLO")
	require.Len(t, *got, 3)
}

func TestRegisterWithNotify(t *testing.T) {
	p := New(7)
	var got []change[int]
	p.RegisterWithNotify(func(prev, cur int) { got = append(got, change[int]{prev, cur}) })

	require.Equal(t, []change[int]{{7, 7}}, got)

	p.SetValue(8)
	require.Equal(t, []change[int]{{7, 7}, {7, 8}}, got)
	require.Panics(t, func() { p.RegisterWithNotify(nil) })
}

func TestRegister_MulticastAndUnregister(t *testing.T) {
	p := New(0)
	calls := 0
	fn := func(_, _ int) { calls++ }
	p.Register(fn)
	p.Register(fn)

	p.SetValue(1)
	require.Equal(t, 2, calls)

	p.Unregister(fn)
	p.SetValue(2)
	require.Equal(t, 3, calls)

	p.Unregister(fn)
	p.Unregister(fn)
	p.SetValue(3)
	require.Equal(t, 3, calls)
	require.Equal(t, 0, p.Listeners())
}

func TestToken_AfterListenerGone(t *testing.T) {
	p := New(0)
	fn := func(_, _ int) {}
	tok := p.Register(fn)

	p.Unregister(fn)
	require.NotPanics(t, tok.Unregister)
	require.NotPanics(t, tok.Unregister)
}

func TestUnregisterDuringNotify(t *testing.T) {
	p := New(0)
	var got []string
	var self interface{ Unregister() }
	self = p.Register(func(_, _ int) {
		got = append(got, "once")
		self.Unregister()
	})
	p.Register(func(_, _ int) { got = append(got, "always") })

	p.SetValue(1)
	p.SetValue(2)

	require.Equal(t, []string{"once", "always", "always"}, got)
}

func TestNestedSetDuringNotify(t *testing.T) {
	p := New(0)
	p.Register(func(_, cur int) {
		if cur == 1 {
			p.SetValue(2)
		}
	})
	got := record(p)

	p.SetValue(1)

	// The nested round finishes first; the outer round still reports 0 -> 1.
	require.Equal(t, []change[int]{{1, 2}, {0, 1}}, *got)
	require.Equal(t, 2, p.Value())
}

func TestRegisterSignal(t *testing.T) {
	p := New("x")
	calls := 0
	tok := p.RegisterSignal(func() { calls++ })

	p.SetValue("y")
	tok.Unregister()
	p.SetValue("z")

	require.Equal(t, 1, calls)
	require.Panics(t, func() { p.RegisterSignal(nil) })
}

func TestString(t *testing.T) {
	require.Equal(t, "42", New(42).String())
}

// Property: the number of notifications equals the number of writes whose
// value differs from the one before it.
func TestSetValue_Property_NotifiesOnChangeOnly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.IntRange(0, 3).Draw(t, "initial")
		writes := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(t, "writes")

		p := New(initial)
		calls := 0
		p.Register(func(_, _ int) { calls++ })

		expected := 0
		last := initial
		for _, w := range writes {
			if w != last {
				expected++
			}
			last = w
			p.SetValue(w)
		}

		require.Equal(t, expected, calls)
		require.Equal(t, last, p.Value())
	})
}

func TestReadOnlyView(t *testing.T) {
	p := New("draft")
	var ro ReadOnly[string] = p

	var seen []string
	tok := ro.RegisterWithNotify(func(_, cur string) { seen = append(seen, cur) })
	p.SetValue("final")
	require.Equal(t, "final", ro.Value())
	require.Equal(t, []string{"draft", "final"}, seen)

	tok.Unregister()
	p.SetValue("ignored")
	require.Len(t, seen, 2)
}
