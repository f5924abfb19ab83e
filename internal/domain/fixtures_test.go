package domain

import (
	"context"
	"errors"
	"time"

	"github.com/zjrosen/strata/internal/bindable"
)

// journal records lifecycle hooks across components in order.
type journal struct {
	entries []string
}

func (j *journal) add(s string) { j.entries = append(j.entries, s) }

type greetingModel struct {
	BaseModel
	Name      *bindable.Property[string]
	initCalls int
	sawDomain bool
	uninitLog *journal
}

func (m *greetingModel) Initialize() {
	m.initCalls++
	m.sawDomain = m.Domain() != nil
	if m.Name == nil {
		m.Name = bindable.New("hello")
	}
}

func (m *greetingModel) Uninitialize() {
	if m.uninitLog != nil {
		m.uninitLog.add("model")
	}
}

type auditSystem struct {
	BaseSystem
	initCalls int
	seen      []string
	uninitLog *journal
}

type nameChanged struct {
	Name string
}

func (s *auditSystem) Initialize() {
	s.initCalls++
	RegisterEvent(s, func(e nameChanged) {
		s.seen = append(s.seen, e.Name)
	})
}

func (s *auditSystem) Uninitialize() {
	if s.uninitLog != nil {
		s.uninitLog.add("system")
	}
}

type numberUtility struct {
	BaseUtility
	N int
}

type renameCommand struct {
	BaseCommand
	To string
}

func (c *renameCommand) Execute(context.Context) error {
	m, ok := GetModel[*greetingModel](c)
	if !ok {
		return errors.New("greeting model missing")
	}
	m.Name.SetValue(c.To)
	SendEvent(c, nameChanged{Name: c.To})
	return nil
}

type failingCommand struct {
	BaseCommand
	err error
}

func (c *failingCommand) Execute(context.Context) error { return c.err }

type panickingCommand struct {
	BaseCommand
}

func (c *panickingCommand) Execute(context.Context) error { panic("boom") }

type bumpCommand struct {
	BaseCommand
}

func (c *bumpCommand) Execute(context.Context) error {
	MustGetUtility[*numberUtility](c).N++
	return nil
}

type numberBumped struct{}

// announcedBumpCommand bumps numberUtility.N and announces it.
type announcedBumpCommand struct {
	BaseCommand
}

func (c *announcedBumpCommand) Execute(context.Context) error {
	MustGetUtility[*numberUtility](c).N++
	SendEvent(c, numberBumped{})
	return nil
}

type doubleCommand struct {
	BaseCommand
}

func (c *doubleCommand) Execute(context.Context) (int, error) {
	u, ok := GetUtility[*numberUtility](c)
	if !ok {
		return 0, errors.New("number utility missing")
	}
	u.N *= 2
	return u.N, nil
}

type numberQuery struct {
	BaseQuery
	executions *int
}

func (q *numberQuery) Execute(context.Context) (int, error) {
	if q.executions != nil {
		*q.executions++
	}
	return MustGetUtility[*numberUtility](q).N, nil
}

func (q *numberQuery) CacheKey() string { return "n" }

func (q *numberQuery) CacheTTL() time.Duration { return 0 }

type nestedCommand struct {
	BaseCommand
	inner Command
}

func (c *nestedCommand) Execute(ctx context.Context) error {
	return SendCommand(ctx, c, c.inner)
}

// controller is any Accessor outside the domain, e.g. a view.
type controller struct {
	domain *Domain
}

func (c controller) Domain() *Domain { return c.domain }
