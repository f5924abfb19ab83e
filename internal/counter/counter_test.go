package counter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/strata/internal/config"
	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/eventbus"
)

func newCounter(t *testing.T, mutate ...func(*config.Config)) *domain.Domain {
	t.Helper()
	cfg := config.Defaults()
	for _, m := range mutate {
		m(&cfg)
	}
	d := New(cfg)
	t.Cleanup(d.Teardown)
	return d
}

func increment(t *testing.T, d *domain.Domain, by int) int {
	t.Helper()
	n, err := domain.SendCommandResult[int](context.Background(), d, &IncrementCommand{By: by})
	require.NoError(t, err)
	return n
}

func TestIncrement_UsesStep(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Counter.Step = 5 })

	require.Equal(t, 5, increment(t, d, 0))
	require.Equal(t, 8, increment(t, d, 3))
	require.Equal(t, 8, domain.MustGetModel[*CounterModel](d).Count.Value())
}

func TestCountChangedEvents(t *testing.T) {
	d := newCounter(t)
	var got []CountChanged
	domain.RegisterEvent(d, func(e CountChanged) { got = append(got, e) })

	increment(t, d, 1)
	increment(t, d, 2)
	require.Equal(t, []CountChanged{{Prev: 0, Count: 1}, {Prev: 1, Count: 3}}, got)
}

func TestMilestones(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Counter.MilestoneEvery = 3 })
	var got []int
	domain.RegisterEvent(d, func(m Milestone) { got = append(got, m.Count) })

	for range 7 {
		increment(t, d, 1)
	}
	require.Equal(t, []int{3, 6}, got)
}

func TestMilestones_Disabled(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Counter.MilestoneEvery = 0 })
	heard := 0
	domain.RegisterEvent(d, func(Milestone) { heard++ })

	for range 20 {
		increment(t, d, 1)
	}
	require.Zero(t, heard)
}

func TestResetCommand(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Counter.Start = 10 })
	increment(t, d, 1)
	increment(t, d, 1)

	require.NoError(t, d.SendCommand(context.Background(), &ResetCommand{}))

	snap, err := domain.SendQuery[Snapshot](context.Background(), d, &SnapshotQuery{})
	require.NoError(t, err)
	require.Equal(t, 10, snap.Count)
	require.Empty(t, snap.History)
}

func TestSetLabelCommand(t *testing.T) {
	d := newCounter(t)
	m := domain.MustGetModel[*CounterModel](d)

	var labels []string
	m.Label.Register(func(_, cur string) { labels = append(labels, cur) })

	require.NoError(t, d.SendCommand(context.Background(), &SetLabelCommand{Label: "  laps "}))
	require.ErrorIs(t, d.SendCommand(context.Background(), &SetLabelCommand{Label: " "}), ErrEmptyLabel)
	require.Equal(t, []string{"laps"}, labels)
	require.Equal(t, int64(1), d.Stats().Failed)
}

func TestSetStepCommand(t *testing.T) {
	d := newCounter(t)

	require.ErrorIs(t, d.SendCommand(context.Background(), &SetStepCommand{}), ErrZeroStep)
	require.NoError(t, d.SendCommand(context.Background(), &SetStepCommand{Step: -2}))
	require.Equal(t, -2, increment(t, d, 0))
}

func TestCurrentCountQuery_CachedUntilCommand(t *testing.T) {
	d := newCounter(t)
	ask := func() int {
		n, err := domain.SendQuery[int](context.Background(), d, &CurrentCountQuery{})
		require.NoError(t, err)
		return n
	}

	require.Zero(t, ask())
	processed := d.Stats().Processed
	require.Zero(t, ask())
	require.Equal(t, processed, d.Stats().Processed, "second ask is served from cache")

	increment(t, d, 4)
	require.Equal(t, 4, ask())
}

func TestCurrentCountQuery_FreshInsideCommand(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Cache.Enabled = true })
	ctx := context.Background()

	warm, err := domain.SendQuery[int](ctx, d, &CurrentCountQuery{})
	require.NoError(t, err)
	require.Zero(t, warm)

	type pair struct{ event, query int }
	var seen []pair
	domain.RegisterEvent(d, func(e CountChanged) {
		n, err := domain.SendQuery[int](ctx, d, &CurrentCountQuery{})
		require.NoError(t, err)
		seen = append(seen, pair{e.Count, n})
	})

	increment(t, d, 5)
	require.Equal(t, []pair{{5, 5}}, seen)

	n, err := domain.SendQuery[int](ctx, d, &CurrentCountQuery{})
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestCurrentCountQuery_NoCache(t *testing.T) {
	d := newCounter(t, func(c *config.Config) { c.Cache.Enabled = false })

	_, err := domain.SendQuery[int](context.Background(), d, &CurrentCountQuery{})
	require.NoError(t, err)
	_, err = domain.SendQuery[int](context.Background(), d, &CurrentCountQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(2), d.Stats().Processed)
}

func TestHistoryLimit(t *testing.T) {
	d := newCounter(t)
	for range historyLimit + 5 {
		increment(t, d, 1)
	}

	h, err := domain.SendQuery[[]int](context.Background(), d, &HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, h, historyLimit)
	require.Equal(t, 6, h[0])
	require.Equal(t, historyLimit+5, h[len(h)-1])
}

func TestGlobalTick(t *testing.T) {
	d := newCounter(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	eventbus.Send(eventbus.Global(), Tick{At: at})
	eventbus.Send(eventbus.Global(), Tick{At: at.Add(time.Second)})

	h := domain.MustGetSystem[*HistorySystem](d)
	n, last := h.Ticks()
	require.Equal(t, 2, n)
	require.Equal(t, at.Add(time.Second), last)

	d.Teardown()
	eventbus.Send(eventbus.Global(), Tick{At: at})
	n, _ = h.Ticks()
	require.Equal(t, 2, n, "torn-down system no longer hears ticks")
}

func TestTeardown_UnbindsModel(t *testing.T) {
	d := newCounter(t)
	m := domain.MustGetModel[*CounterModel](d)
	require.Equal(t, 1, m.Count.Listeners())

	d.Teardown()
	require.Zero(t, m.Count.Listeners())
}

func TestDefinitionSingleton(t *testing.T) {
	domain.ResetInstances()
	t.Cleanup(domain.ResetInstances)

	d := domain.Instance[Definition]()
	require.Same(t, d, domain.Instance[Definition]())
	require.Equal(t, 1, increment(t, d, 0))
	require.Equal(t, "----System----\nHistorySystem\n----Model----\nCounterModel\n----Utility----\nStepUtility\n", d.String())
}

func TestIncrementSumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := config.Defaults()
		cfg.Counter.Start = rapid.IntRange(-100, 100).Draw(t, "start")
		d := New(cfg)
		defer d.Teardown()

		steps := rapid.SliceOfN(rapid.IntRange(-10, 10), 0, 30).Draw(t, "steps")
		want := cfg.Counter.Start
		for _, by := range steps {
			if by == 0 {
				by = cfg.Counter.Step
			}
			want += by
			got, err := domain.SendCommandResult[int](context.Background(), d, &IncrementCommand{By: by})
			if err != nil {
				t.Fatalf("increment: %v", err)
			}
			if got != want {
				t.Fatalf("count = %d, want %d", got, want)
			}
		}
	})
}
