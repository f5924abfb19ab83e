package counter

import (
	"slices"
	"time"

	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/event"
	"github.com/zjrosen/strata/internal/eventbus"
	"github.com/zjrosen/strata/internal/log"
)

const historyLimit = 50

// Milestone is sent when the count lands on a non-zero multiple of the
// configured interval.
type Milestone struct {
	Count int
}

// Tick is a process-wide heartbeat delivered on eventbus.Global.
type Tick struct {
	At time.Time
}

// HistorySystem records recent counts and announces milestones.
type HistorySystem struct {
	domain.BaseSystem

	every    int
	entries  []int
	lastTick time.Time
	ticks    int
	subs     event.Group
}

// NewHistorySystem announces a milestone every `every` counts; 0 disables.
func NewHistorySystem(every int) *HistorySystem {
	return &HistorySystem{every: every}
}

func (s *HistorySystem) Initialize() {
	s.subs.Add(domain.RegisterEvent(s, s.onCountChanged))
	s.subs.Add(eventbus.RegisterGlobal[Tick](s))
}

func (s *HistorySystem) Uninitialize() {
	s.subs.UnregisterAll()
}

func (s *HistorySystem) onCountChanged(e CountChanged) {
	s.entries = append(s.entries, e.Count)
	if over := len(s.entries) - historyLimit; over > 0 {
		s.entries = slices.Delete(s.entries, 0, over)
	}

	if s.every > 0 && e.Count != 0 && e.Count%s.every == 0 {
		log.Info(log.CatEvents, "milestone reached", "count", e.Count)
		domain.SendEvent(s, Milestone{Count: e.Count})
	}
}

// OnEvent receives global ticks.
func (s *HistorySystem) OnEvent(t Tick) {
	s.lastTick = t.At
	s.ticks++
}

// History returns recorded counts, oldest first.
func (s *HistorySystem) History() []int {
	return slices.Clone(s.entries)
}

// Ticks returns how many global ticks arrived and when the last one did.
func (s *HistorySystem) Ticks() (int, time.Time) {
	return s.ticks, s.lastTick
}

// Clear forgets the recorded history.
func (s *HistorySystem) Clear() {
	s.entries = nil
}
