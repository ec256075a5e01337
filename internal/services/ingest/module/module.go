// Package module wires the Ingestion Pipeline worker: readability and LLM
// adapters behind the service's narrow ports, the task queue's Queue port,
// and the bookmarks gateway port. It exposes no HTTP routes.
package module

import (
	"context"

	"bookmarkhub/internal/adapters/llm"
	"bookmarkhub/internal/adapters/readability"
	"bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	bmdomain "bookmarkhub/internal/services/bookmarks/domain"
	ingestsvc "bookmarkhub/internal/services/ingest/service"
	tqdomain "bookmarkhub/internal/services/taskqueue/domain"
)

// Module defines the ingestion worker module.
type Module struct {
	deps modkit.Deps
	svc  *ingestsvc.Svc
}

// New constructs the ingestion module. queue and gateway are the cross-module
// ports injected from the task queue and bookmarks modules respectively.
func New(deps modkit.Deps, queue tqdomain.QueuePort, gateway bmdomain.GatewayPort, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		opts.Workers = overrides.Workers
	}
	if overrides.PollInterval != 0 {
		opts.PollInterval = overrides.PollInterval
	}
	if overrides.LeaseVisibility != 0 {
		opts.LeaseVisibility = overrides.LeaseVisibility
	}
	if overrides.DrainTimeout != 0 {
		opts.DrainTimeout = overrides.DrainTimeout
	}
	if overrides.ReadabilityURL != "" {
		opts.ReadabilityURL = overrides.ReadabilityURL
	}
	if overrides.LLMBaseURL != "" {
		opts.LLMBaseURL = overrides.LLMBaseURL
	}
	if overrides.LLMChatModel != "" {
		opts.LLMChatModel = overrides.LLMChatModel
	}
	if overrides.LLMEmbedModel != "" {
		opts.LLMEmbedModel = overrides.LLMEmbedModel
	}
	if overrides.UpstreamMaxConnsPerHost != 0 {
		opts.UpstreamMaxConnsPerHost = overrides.UpstreamMaxConnsPerHost
	}

	rc := readability.NewClient(readability.Options{URL: opts.ReadabilityURL, MaxConnsPerHost: opts.UpstreamMaxConnsPerHost})
	lc := llm.NewClient(llm.Options{
		BaseURL:         opts.LLMBaseURL,
		ChatModel:       opts.LLMChatModel,
		EmbedModel:      opts.LLMEmbedModel,
		MaxConnsPerHost: opts.UpstreamMaxConnsPerHost,
	})

	svc := ingestsvc.New(
		queue, gateway,
		ingestsvc.NewHTTPFetcher(),
		cleanerAdapter{rc},
		classifierAdapter{lc},
		embedderAdapter{lc},
		ingestsvc.Config{
			Workers:         opts.Workers,
			PollInterval:    opts.PollInterval,
			LeaseVisibility: opts.LeaseVisibility,
			DrainTimeout:    opts.DrainTimeout,
		},
	)

	return &Module{deps: deps, svc: svc}
}

// Run starts the ingestion worker loop; blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Ports returns no cross-module ports: ingest is a terminal consumer.
func (m *Module) Ports() any { return nil }

// Name returns the module name.
func (m *Module) Name() string { return "ingest" }

// Prefix returns the module config prefix (none for worker-only service).
func (m *Module) Prefix() string { return "" }

// MountRoutes returns no HTTP routes.
func (m *Module) MountRoutes(_ httpkit.Router) {}

type cleanerAdapter struct{ c *readability.Client }

func (a cleanerAdapter) Clean(ctx context.Context, html string) (string, string, error) {
	out, err := a.c.Clean(ctx, html)
	if err != nil {
		return "", "", err
	}
	return out.Title, out.TextContent, nil
}

type classifierAdapter struct{ c *llm.Client }

func (a classifierAdapter) Classify(ctx context.Context, text string) ([]string, string, error) {
	out, err := a.c.Classify(ctx, text)
	if err != nil {
		return nil, "", err
	}
	return out.Tags, out.Summary, nil
}

type embedderAdapter struct{ c *llm.Client }

func (a embedderAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return a.c.Embed(ctx, texts)
}
