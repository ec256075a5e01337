package main

import (
	"context"
	"flag"

	"bookmarkhub/internal/modkit"
	"bookmarkhub/internal/modkit/module"
	"bookmarkhub/internal/platform/config"
	"bookmarkhub/internal/platform/logger"
	"bookmarkhub/internal/platform/store"

	bmdomain "bookmarkhub/internal/services/bookmarks/domain"
	bookmarksmod "bookmarkhub/internal/services/bookmarks/module"
	ingestmod "bookmarkhub/internal/services/ingest/module"
	taskqueuemod "bookmarkhub/internal/services/taskqueue/module"
)

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fWorkers     = flag.Int("workers", 0, "ingestion worker concurrency (overrides WORKER_POOL_SIZE)")
		fPoll        = flag.Duration("poll", 0, "lease poll interval (overrides POLL_INTERVAL_MS)")
		fLease       = flag.Duration("lease", 0, "lease visibility timeout (overrides VISIBILITY_TIMEOUT_S)")
		fDrain       = flag.Duration("drain", 0, "graceful shutdown drain timeout (overrides DRAIN_TIMEOUT_S)")
		fReadability = flag.String("readability-url", "", "readability service URL (overrides READABILITY_URL)")
		fLLMBase     = flag.String("llm-url", "", "LLM server base URL (overrides OLLAMA_URL)")
	)
	flag.Parse()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	// Construct the task queue worker module first and extract its ports.
	taskQueue := taskqueuemod.New(deps, taskqueuemod.Options{})
	module.Register(taskQueue.Name(), taskQueue.Ports())
	tqPorts := module.MustPortsOf[taskqueuemod.Ports](taskQueue)

	// The ingestion worker only consumes the bookmarks gateway port; it
	// still needs an Enqueuer to satisfy the bookmarks module's
	// constructor, same as the API process does.
	bookmarks := bookmarksmod.New(
		deps,
		modkit.WithPorts(bookmarksmod.Ports{Enqueuer: tqPorts.Enqueuer}),
	)
	module.Register(bookmarks.Name(), bookmarks.Ports())
	gateway := module.MustPortsOf[bmdomain.GatewayPort](bookmarks)

	ingest := ingestmod.New(deps, tqPorts.Queue, gateway, ingestmod.Options{
		Workers:         *fWorkers,
		PollInterval:    *fPoll,
		LeaseVisibility: *fLease,
		DrainTimeout:    *fDrain,
		ReadabilityURL:  *fReadability,
		LLMBaseURL:      *fLLMBase,
	})

	// Reclaim any leases left over from a previous, crashed instance of this
	// worker before the poll loop starts leasing new work.
	if n, err := tqPorts.Queue.ReapStaleLeases(context.Background()); err != nil {
		l.Error().Err(err).Msg("reap stale leases failed")
	} else if n > 0 {
		l.Info().Int64("reaped", n).Msg("reaped stale task leases")
	}

	if err := ingest.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("ingestion worker failed")
	}
}
