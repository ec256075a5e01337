// Package api provides the HTTP API for the application: bookmarks, search,
// and the rag composer, plus the task queue worker module so its Enqueuer
// port is available to wire into bookmarks.
package api

import (
	"bookmarkhub/internal/platform/config"
	"bookmarkhub/internal/platform/logger"
	phttp "bookmarkhub/internal/platform/net/http"
	"bookmarkhub/internal/platform/store"

	"bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/httpkit"
	"bookmarkhub/internal/modkit/module"
	"bookmarkhub/internal/modkit/swaggerkit"

	metamod "bookmarkhub/internal/services/api/meta/module"

	bookmarksmod "bookmarkhub/internal/services/bookmarks/module"
	ragmod "bookmarkhub/internal/services/rag/module"
	searchmod "bookmarkhub/internal/services/search/module"
	taskqueuemod "bookmarkhub/internal/services/taskqueue/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// Construct the task queue worker module first and extract its Enqueuer
	// port; bookmarks' create endpoint needs it to kick off ingestion.
	taskQueue := taskqueuemod.New(deps, taskqueuemod.Options{})
	enq := module.MustPortsOf[taskqueuemod.Ports](taskQueue).Enqueuer

	bookmarks := bookmarksmod.New(
		deps,
		modkit.WithPorts(bookmarksmod.Ports{Enqueuer: enq}),
	)

	search := searchmod.New(deps, searchmod.Options{})
	rag := ragmod.New(deps, ragmod.Options{})

	mods := []module.Module{
		metamod.New(deps),
		taskQueue, // include worker so its ports are registered
		bookmarks,
		search,
		rag,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
