// Package module wires the RAG Composer (component G) into the API using
// modkit. It depends on no cross-module ports: chunk retrieval goes
// directly through its own repo, the same way the search engine queries
// bookmark_chunks directly.
package module

import (
	"context"
	"net/http"

	"bookmarkhub/internal/adapters/llm"
	modkit "bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	str "bookmarkhub/internal/platform/strings"

	rhttp "bookmarkhub/internal/services/rag/http"
	rrepo "bookmarkhub/internal/services/rag/repo"
	rsvc "bookmarkhub/internal/services/rag/service"
)

// Module implements the modkit.Module interface.
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc rsvc.Service
}

// New constructs the rag composer module.
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("rag"),
		modkit.WithPrefix("/rag"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	if overrides.TopK != 0 {
		cfg.TopK = overrides.TopK
	}
	if overrides.Threshold != 0 {
		cfg.Threshold = overrides.Threshold
	}
	if overrides.LLMBaseURL != "" {
		cfg.LLMBaseURL = overrides.LLMBaseURL
	}
	if overrides.LLMChatModel != "" {
		cfg.LLMChatModel = overrides.LLMChatModel
	}
	if overrides.LLMEmbedModel != "" {
		cfg.LLMEmbedModel = overrides.LLMEmbedModel
	}

	lc := llm.NewClient(llm.Options{
		BaseURL:         cfg.LLMBaseURL,
		ChatModel:       cfg.LLMChatModel,
		EmbedModel:      cfg.LLMEmbedModel,
		MaxConnsPerHost: cfg.UpstreamMaxConnsPerHost,
	})
	svc := rsvc.New(deps.PG, rrepo.NewPG(), embedderAdapter{lc}, answererAdapter{lc}, rsvc.Config{
		TopK:      cfg.TopK,
		Threshold: cfg.Threshold,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rhttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface.
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Ports returns no cross-module ports: rag is a terminal consumer.
func (m *Module) Ports() any { return nil }

// Name returns the module name.
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix.
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares.
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

type embedderAdapter struct{ c *llm.Client }

func (a embedderAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return a.c.Embed(ctx, texts)
}

type answererAdapter struct{ c *llm.Client }

func (a answererAdapter) Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return a.c.Answer(ctx, systemPrompt, userPrompt)
}
