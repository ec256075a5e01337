// Package module wires the Storage Gateway (component A) into the API using
// modkit, and exposes its GatewayPort for the ingestion pipeline to consume.
package module

import (
	"net/http"

	modkit "bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	str "bookmarkhub/internal/platform/strings"

	bhttp "bookmarkhub/internal/services/bookmarks/http"
	brepo "bookmarkhub/internal/services/bookmarks/repo"
	bsvc "bookmarkhub/internal/services/bookmarks/service"
)

// Module implements the modkit.Module interface.
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc bsvc.Service
}

// Ports declares the required injected worker port for this module: the
// task queue's Enqueuer, so POST /bookmarks can kick off ingestion.
type Ports struct {
	Enqueuer bhttp.EnqueuePort
}

// New constructs the bookmarks module with the provided dependencies and
// options.
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("bookmarks"),
		modkit.WithPrefix("/bookmarks"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Enqueuer == nil {
		panic("bookmarks module requires Enqueuer port (from services/taskqueue)")
	}

	svc := bsvc.New(deps.PG, brepo.NewPG())

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptBookmarksPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		bhttp.Register(r, m.svc, injected.Enqueuer)
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

// Name returns the module name.
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix.
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares.
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
