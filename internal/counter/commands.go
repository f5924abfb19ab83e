package counter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zjrosen/strata/internal/domain"
)

var (
	ErrEmptyLabel = errors.New("label must not be empty")
	ErrZeroStep   = errors.New("step must not be 0")
)

// IncrementCommand adds By to the count, or the StepUtility step when By is
// 0, and returns the new count.
type IncrementCommand struct {
	domain.BaseCommand
	By int
}

func (c *IncrementCommand) Execute(context.Context) (int, error) {
	m := domain.MustGetModel[*CounterModel](c)
	by := c.By
	if by == 0 {
		by = domain.MustGetUtility[*StepUtility](c).Step
	}
	m.Count.SetValue(m.Count.Value() + by)
	return m.Count.Value(), nil
}

// ResetCommand returns the count to its start value and clears history.
type ResetCommand struct {
	domain.BaseCommand
}

func (c *ResetCommand) Execute(context.Context) error {
	m := domain.MustGetModel[*CounterModel](c)
	m.Count.SetValue(m.Start())
	if h, ok := domain.GetSystem[*HistorySystem](c); ok {
		h.Clear()
	}
	return nil
}

type SetLabelCommand struct {
	domain.BaseCommand
	Label string
}

func (c *SetLabelCommand) Execute(context.Context) error {
	label := strings.TrimSpace(c.Label)
	if label == "" {
		return ErrEmptyLabel
	}
	domain.MustGetModel[*CounterModel](c).Label.SetValue(label)
	return nil
}

type SetStepCommand struct {
	domain.BaseCommand
	Step int
}

func (c *SetStepCommand) Execute(context.Context) error {
	if c.Step == 0 {
		return ErrZeroStep
	}
	domain.MustGetUtility[*StepUtility](c).Step = c.Step
	return nil
}

// CurrentCountQuery answers the current count. Answers are cacheable until
// the next command.
type CurrentCountQuery struct {
	domain.BaseQuery
}

func (q *CurrentCountQuery) Execute(context.Context) (int, error) {
	return domain.MustGetModel[*CounterModel](q).Count.Value(), nil
}

func (q *CurrentCountQuery) CacheKey() string { return "count" }

func (q *CurrentCountQuery) CacheTTL() time.Duration { return 0 }

// HistoryQuery answers the recorded counts, oldest first.
type HistoryQuery struct {
	domain.BaseQuery
}

func (q *HistoryQuery) Execute(context.Context) ([]int, error) {
	h, ok := domain.GetSystem[*HistorySystem](q)
	if !ok {
		return nil, nil
	}
	return h.History(), nil
}

// Snapshot is everything a view needs to render the counter.
type Snapshot struct {
	Count   int
	Label   string
	Step    int
	History []int
	Ticks   int
}

type SnapshotQuery struct {
	domain.BaseQuery
}

func (q *SnapshotQuery) Execute(context.Context) (Snapshot, error) {
	m := domain.MustGetModel[*CounterModel](q)
	snap := Snapshot{
		Count: m.Count.Value(),
		Label: m.Label.Value(),
		Step:  domain.MustGetUtility[*StepUtility](q).Step,
	}
	if h, ok := domain.GetSystem[*HistorySystem](q); ok {
		snap.History = h.History()
		snap.Ticks, _ = h.Ticks()
	}
	return snap, nil
}
