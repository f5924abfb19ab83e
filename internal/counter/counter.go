// Package counter is a small application built on the domain package: a
// counter model with a label, a configurable step, a history system that
// announces milestones, and the commands and queries that drive them.
package counter

import (
	"github.com/zjrosen/strata/internal/cachemanager"
	"github.com/zjrosen/strata/internal/config"
	"github.com/zjrosen/strata/internal/domain"
)

// Definition is the singleton counter domain, seeded from config.Defaults.
type Definition struct{}

func (Definition) Init(d *domain.Domain) {
	Build(d, config.Defaults().Counter)
}

func (Definition) Options() []domain.Option {
	return []domain.Option{domain.WithMiddleware(domain.NewLoggingMiddleware())}
}

// New creates a standalone counter domain configured from cfg. extra
// options are applied after the built-in ones, so extra middleware runs
// inside the logging middleware.
func New(cfg config.Config, extra ...domain.Option) *domain.Domain {
	opts := []domain.Option{domain.WithMiddleware(domain.NewLoggingMiddleware())}
	if cfg.Cache.Enabled {
		cache := cachemanager.NewInMemoryCacheManager[string, any]("counter-queries", cfg.Cache.TTL, cachemanager.DefaultCleanupInterval)
		opts = append(opts, domain.WithQueryCache(cache))
	}
	opts = append(opts, extra...)

	d := domain.New("counter", opts...)
	Build(d, cfg.Counter)
	return d
}

// Build registers the counter components on d. Utilities and models come
// first because the history system reads the model when it initializes.
func Build(d *domain.Domain, cfg config.CounterConfig) {
	domain.RegisterUtility(d, &StepUtility{Step: cfg.Step})
	domain.RegisterModel(d, NewCounterModel(cfg.Start, cfg.Label))
	domain.RegisterSystem(d, NewHistorySystem(cfg.MilestoneEvery))
}
