package counter

import (
	"github.com/zjrosen/strata/internal/bindable"
	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/event"
)

// CountChanged is sent on the domain bus after every change of the count.
type CountChanged struct {
	Prev  int
	Count int
}

// CounterModel owns the count and its label.
type CounterModel struct {
	domain.BaseModel

	Count *bindable.Property[int]
	Label *bindable.Property[string]

	start int
	subs  event.Group
}

func NewCounterModel(start int, label string) *CounterModel {
	return &CounterModel{
		Count: bindable.New(start),
		Label: bindable.New(label),
		start: start,
	}
}

// Initialize forwards count changes to the event bus.
func (m *CounterModel) Initialize() {
	m.subs.Add(m.Count.Register(func(prev, cur int) {
		domain.SendEvent(m, CountChanged{Prev: prev, Count: cur})
	}))
}

func (m *CounterModel) Uninitialize() {
	m.subs.UnregisterAll()
}

// Start is the value Reset returns to.
func (m *CounterModel) Start() int {
	return m.start
}

// StepUtility holds the amount added by an increment.
type StepUtility struct {
	domain.BaseUtility
	Step int
}
