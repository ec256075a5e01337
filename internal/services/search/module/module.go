// Package module wires the Search Engine (component F) into the API using
// modkit. It exposes no cross-module port: the rag composer retrieves
// chunks through its own repo instead of through search's results.
package module

import (
	"context"
	"net/http"

	"bookmarkhub/internal/adapters/llm"
	modkit "bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	str "bookmarkhub/internal/platform/strings"

	shttp "bookmarkhub/internal/services/search/http"
	srepo "bookmarkhub/internal/services/search/repo"
	ssvc "bookmarkhub/internal/services/search/service"
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

	svc ssvc.Service
}

// New constructs the search module. overrides lets callers pin the
// embedding upstream without going through config.
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("search"),
		modkit.WithPrefix("/search"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	if overrides.LLMBaseURL != "" {
		cfg.LLMBaseURL = overrides.LLMBaseURL
	}
	if overrides.LLMEmbedModel != "" {
		cfg.LLMEmbedModel = overrides.LLMEmbedModel
	}

	lc := llm.NewClient(llm.Options{BaseURL: cfg.LLMBaseURL, EmbedModel: cfg.LLMEmbedModel, MaxConnsPerHost: cfg.UpstreamMaxConnsPerHost})
	svc := ssvc.New(deps.PG, srepo.NewPG(), embedderAdapter{lc})

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
		shttp.Register(r, svc)
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

// Ports returns no cross-module ports: the rag composer retrieves chunks
// directly through its own repo rather than through search's bookmark-level
// fused results.
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
