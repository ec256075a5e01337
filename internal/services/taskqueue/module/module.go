// Package module wires the task queue worker service and exposes its ports.
// It has no HTTP surface of its own: it is consumed by the ingestion worker
// and, via its Enqueuer port, by the bookmarks module's create endpoint.
package module

import (
	"time"

	"bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	"bookmarkhub/internal/platform/config"
	"bookmarkhub/internal/services/taskqueue/repo"
	"bookmarkhub/internal/services/taskqueue/service"
)

// Module defines the task queue module.
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// Options tunes the queue's retry schedule; zero values fall back to
// config (then service.DefaultConfig()).
type Options struct {
	MaxRetries int
	RetryBase  int64 // seconds
	RetryCap   int64 // seconds
}

// FromConfig reads the ambient-stack queue tunables: MAX_RETRIES,
// RETRY_BASE_S, RETRY_CAP_S.
func FromConfig(cfg config.Conf) Options {
	def := service.DefaultConfig()
	return Options{
		MaxRetries: cfg.MayInt("MAX_RETRIES", def.MaxRetries),
		RetryBase:  int64(cfg.MayInt("RETRY_BASE_S", int(def.RetryBase/time.Second))),
		RetryCap:   int64(cfg.MayInt("RETRY_CAP_S", int(def.RetryCap/time.Second))),
	}
}

// New constructs the task queue module with its ports.
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.MaxRetries != 0 {
		opts.MaxRetries = overrides.MaxRetries
	}
	if overrides.RetryBase != 0 {
		opts.RetryBase = overrides.RetryBase
	}
	if overrides.RetryCap != 0 {
		opts.RetryCap = overrides.RetryCap
	}

	cfg := service.DefaultConfig()
	cfg.MaxRetries = opts.MaxRetries
	cfg.RetryBase = time.Duration(opts.RetryBase) * time.Second
	cfg.RetryCap = time.Duration(opts.RetryCap) * time.Second

	svc := service.New(deps.PG, repo.NewPG(), cfg)

	m := &Module{deps: deps}
	m.ports = Ports{Queue: svc, Enqueuer: svc}
	return m
}

// Ports returns the module ports (Queue, Enqueuer).
func (m *Module) Ports() any { return m.ports }

// Name returns the module name.
func (m *Module) Name() string { return "taskqueue" }

// Prefix returns the module config prefix (none for worker-only service).
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes.
func (m *Module) MountRoutes(_ httpkit.Router) {}
