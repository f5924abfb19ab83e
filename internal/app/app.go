// Package app contains the Bubble Tea model that drives the counter domain.
// It is the domain's controller: key presses become commands, and bindable
// properties and domain events feed the view.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/strata/internal/config"
	"github.com/zjrosen/strata/internal/counter"
	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/event"
	"github.com/zjrosen/strata/internal/eventbus"
	"github.com/zjrosen/strata/internal/keys"
	"github.com/zjrosen/strata/internal/log"
	"github.com/zjrosen/strata/internal/ui/markdown"
	"github.com/zjrosen/strata/internal/watcher"
)

const tickInterval = time.Second

type (
	tickMsg          time.Time
	configChangedMsg struct{}
	configSavedMsg   struct{ err error }
)

// viewState is written by domain callbacks and read by View. Model is
// copied on every Update, so the state lives behind a pointer.
type viewState struct {
	count     int
	label     string
	milestone int
	snap      counter.Snapshot
	flash     string
	err       error
}

// Options configures the application model.
type Options struct {
	Config     config.Config
	ConfigPath string
	// Watch reloads the counter section whenever ConfigPath changes.
	Watch bool
	// Ticks sends counter.Tick on the global bus every second.
	Ticks bool
}

// Model is the root application state.
type Model struct {
	domain *domain.Domain
	opts   Options
	state  *viewState
	subs   *event.Group

	keys     keys.KeyMap
	help     help.Model
	renderer *markdown.Renderer
	showDump bool
	showLog  bool

	width  int
	height int

	logCancel   context.CancelFunc
	logListener *log.LogListener
	logLine     string

	watcher *watcher.Watcher
	changes <-chan struct{}
}

// New creates the model and subscribes it to d.
func New(d *domain.Domain, opts Options) Model {
	m := Model{
		domain:  d,
		opts:    opts,
		state:   &viewState{},
		subs:    &event.Group{},
		keys:    keys.DefaultKeyMap(),
		help:    help.New(),
		showLog: opts.Config.UI.ShowLog,
		width:   80,
		height:  24,
	}
	m.renderer = newRenderer(m.width, opts.Config.UI.MarkdownStyle)
	m.bind()
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	if l := log.NewListener(ctx); l != nil {
		m.logListener = l
		m.logCancel = cancel
	} else {
		cancel()
	}

	if opts.Watch && opts.ConfigPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(opts.ConfigPath))
		if err != nil {
			log.ErrorErr(log.CatWatcher, "config watch disabled", err, "path", opts.ConfigPath)
		} else {
			if ch, err := w.Start(); err == nil {
				m.watcher = w
				m.changes = ch
			} else {
				_ = w.Stop()
				log.ErrorErr(log.CatWatcher, "config watch disabled", err, "path", opts.ConfigPath)
			}
		}
	}
	return m
}

// Domain makes the model a domain.Accessor.
func (m Model) Domain() *domain.Domain {
	return m.domain
}

func (m Model) bind() {
	st := m.state
	cm := domain.MustGetModel[*counter.CounterModel](m)

	m.subs.Add(cm.Count.RegisterWithNotify(func(_, cur int) { st.count = cur }))
	m.subs.Add(cm.Label.RegisterWithNotify(func(_, cur string) { st.label = cur }))
	m.subs.Add(domain.RegisterEvent(m, func(e counter.Milestone) {
		st.milestone = e.Count
		st.flash = fmt.Sprintf("milestone %d!", e.Count)
	}))
}

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Ticks {
		cmds = append(cmds, tick())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.renderer = newRenderer(msg.Width, m.opts.Config.UI.MarkdownStyle)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		eventbus.Send(eventbus.Global(), counter.Tick{At: time.Time(msg)})
		m.refresh()
		return m, tick()

	case log.LogEvent:
		m.logLine = msg.Payload
		return m, m.logListener.Listen()

	case configChangedMsg:
		m.reloadConfig()
		m.refresh()
		return m, waitForChange(m.changes)

	case configSavedMsg:
		if msg.err != nil {
			m.state.err = msg.err
		} else {
			m.state.flash = "saved to " + m.opts.ConfigPath
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state.err = nil
	m.state.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Increment):
		m.increment(0)
	case key.Matches(msg, m.keys.Decrement):
		m.increment(-m.step())
	case key.Matches(msg, m.keys.Reset):
		m.send(&counter.ResetCommand{})
	case key.Matches(msg, m.keys.StepUp):
		m.setStep(m.step() + 1)
	case key.Matches(msg, m.keys.StepDown):
		m.setStep(m.step() - 1)
	case key.Matches(msg, m.keys.Dump):
		m.showDump = !m.showDump
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	}
	m.refresh()
	return m, nil
}

func (m Model) increment(by int) {
	if _, err := domain.SendCommandResult[int](context.Background(), m, &counter.IncrementCommand{By: by}); err != nil {
		m.state.err = err
	}
}

func (m Model) send(cmd domain.Command) {
	if err := m.domain.SendCommand(context.Background(), cmd); err != nil {
		m.state.err = err
	}
}

// setStep skips 0 so stepping through it goes straight from 1 to -1.
func (m Model) setStep(step int) {
	if step == 0 {
		if m.step() > 0 {
			step = -1
		} else {
			step = 1
		}
	}
	m.send(&counter.SetStepCommand{Step: step})
}

func (m Model) step() int {
	return domain.MustGetUtility[*counter.StepUtility](m).Step
}

// refresh re-reads the parts of the view that are not bound properties.
// It runs on the update loop, never from View.
func (m Model) refresh() {
	snap, err := domain.SendQuery[counter.Snapshot](context.Background(), m, &counter.SnapshotQuery{})
	if err != nil {
		m.state.err = err
		return
	}
	m.state.snap = snap
}

// reloadConfig applies the counter section of the config file. Only step
// and label can change at runtime.
func (m Model) reloadConfig() {
	cfg, err := config.Load(m.opts.ConfigPath)
	if err != nil {
		log.ErrorErr(log.CatConfig, "config reload failed", err, "path", m.opts.ConfigPath)
		m.state.err = err
		return
	}
	if cfg.Counter.Step != m.step() {
		m.send(&counter.SetStepCommand{Step: cfg.Counter.Step})
	}
	if cfg.Counter.Label != m.state.label {
		m.send(&counter.SetLabelCommand{Label: cfg.Counter.Label})
	}
	log.Info(log.CatConfig, "config reloaded", "path", m.opts.ConfigPath)
	m.state.flash = "config reloaded"
}

func (m Model) save() tea.Cmd {
	if m.opts.ConfigPath == "" {
		m.state.err = fmt.Errorf("no config file to save to")
		return nil
	}
	counterCfg := m.opts.Config.Counter
	counterCfg.Step = m.step()
	counterCfg.Label = m.state.label
	path := m.opts.ConfigPath
	return func() tea.Msg {
		return configSavedMsg{err: config.SaveCounter(path, counterCfg)}
	}
}

// Close releases subscriptions and background resources.
func (m Model) Close() error {
	m.subs.UnregisterAll()
	if m.logCancel != nil {
		m.logCancel()
	}
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}

func newRenderer(width int, style string) *markdown.Renderer {
	r, err := markdown.New(max(width-4, 20), style)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer unavailable", err)
		return nil
	}
	return r
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}
