// Package service implements the Ingestion Pipeline (component E): a poll
// loop that leases tasks from the Task Queue and drives each one through
// fetch -> clean -> classify -> chunk -> embed -> persist -> ack.
package service

import (
	"context"
	"sync"
	"time"

	"bookmarkhub/internal/core/textproc"
	perr "bookmarkhub/internal/platform/errors"
	"bookmarkhub/internal/platform/logger"
	bmdomain "bookmarkhub/internal/services/bookmarks/domain"
	"bookmarkhub/internal/services/ingest/domain"
	tqdomain "bookmarkhub/internal/services/taskqueue/domain"
)

// Config tunes the orchestrator's concurrency and per-stage behaviour.
type Config struct {
	Workers         int           // concurrent in-flight tasks; <=0 -> 1
	PollInterval    time.Duration // <=0 -> 500ms
	LeaseVisibility time.Duration // <=0 -> 2m
	DrainTimeout    time.Duration // <=0 -> 30s
	InsertChunkSize int           // reserved for batched chunk inserts; <=0 -> all at once
}

// Svc drives tasks from lease to ack.
type Svc struct {
	queue    tqdomain.QueuePort
	gateway  bmdomain.GatewayPort
	fetch    domain.Fetcher
	clean    domain.Cleaner
	classify domain.Classifier
	embed    domain.Embedder
	cfg      Config
	log      logger.Logger
}

// New constructs the ingestion service. All dependencies are required.
func New(queue tqdomain.QueuePort, gateway bmdomain.GatewayPort, fetch domain.Fetcher, clean domain.Cleaner, classify domain.Classifier, embed domain.Embedder, cfg Config) *Svc {
	if queue == nil {
		panic("ingest.Service requires a non nil QueuePort")
	}
	if gateway == nil {
		panic("ingest.Service requires a non nil GatewayPort")
	}
	if fetch == nil || clean == nil || classify == nil || embed == nil {
		panic("ingest.Service requires non nil Fetcher/Cleaner/Classifier/Embedder")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseVisibility <= 0 {
		cfg.LeaseVisibility = 2 * time.Minute
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 30 * time.Second
	}
	return &Svc{queue: queue, gateway: gateway, fetch: fetch, clean: clean, classify: classify, embed: embed, cfg: cfg, log: *logger.Named("ingest")}
}

// NewHTTPFetcher exposes the package's stdlib-based Fetcher for module wiring.
func NewHTTPFetcher() domain.Fetcher { return newHTTPFetcher() }

// Run polls the task queue and processes leased tasks concurrently, bounded
// by a semaphore-bounded goroutine pool with a sync.WaitGroup drain: once ctx
// is cancelled, Run stops leasing new work and waits up to cfg.DrainTimeout
// for in-flight tasks to finish acking before returning.
func (s *Svc) Run(ctx context.Context) error {
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.drain(&wg)
		case <-ticker.C:
			task, found, err := s.queue.Lease(ctx, "ingest", s.cfg.LeaseVisibility)
			if err != nil {
				s.log.Error().Err(err).Msg("lease failed")
				continue
			}
			if !found {
				continue
			}
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				s.processOne(ctx, task)
			}()
		}
	}
}

// drain waits up to cfg.DrainTimeout for in-flight tasks dispatched by Run to
// finish, so a shutdown doesn't cut off a task mid-ack.
func (s *Svc) drain(wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.DrainTimeout):
		s.log.Warn().Dur("drain_timeout", s.cfg.DrainTimeout).Msg("drain timeout exceeded with tasks still in flight")
		return context.DeadlineExceeded
	}
}

// processOne drives a single task through every stage, acking its outcome.
func (s *Svc) processOne(ctx context.Context, task tqdomain.Task) {
	start := time.Now()
	var fetchDur, cleanDur, classifyDur, chunkDur, embedDur, persistDur time.Duration

	result, err := s.runStages(ctx, task, &fetchDur, &cleanDur, &classifyDur, &chunkDur, &embedDur, &persistDur)

	log := s.log.With().Str("task_id", task.TaskID).Logger()
	log.Info().
		Dur("fetch", fetchDur).Dur("clean", cleanDur).Dur("classify", classifyDur).
		Dur("chunk", chunkDur).Dur("embed", embedDur).Dur("persist", persistDur).
		Dur("total", time.Since(start)).
		Err(err).
		Msg("task finalised")

	if err == nil {
		if ackErr := s.queue.AckDone(ctx, task.TaskID, result.summary); ackErr != nil {
			log.Error().Err(ackErr).Msg("ack done failed")
		}
		return
	}

	if isFatal(err) {
		if ackErr := s.queue.AckFatal(ctx, task.TaskID, err.Error()); ackErr != nil {
			log.Error().Err(ackErr).Msg("ack fatal failed")
		}
		return
	}
	if ackErr := s.queue.AckRetry(ctx, task.TaskID, err.Error()); ackErr != nil {
		log.Error().Err(ackErr).Msg("ack retry failed")
	}
}

type stageResult struct {
	summary string
}

func (s *Svc) runStages(ctx context.Context, task tqdomain.Task, fetchDur, cleanDur, classifyDur, chunkDur, embedDur, persistDur *time.Duration) (stageResult, error) {
	// 1. URL validation.
	if !textproc.ValidHTTPURL(task.URL) {
		return stageResult{}, fatalf("invalid url %q", task.URL)
	}
	domainStr, err := textproc.Domain(task.URL)
	if err != nil {
		return stageResult{}, fatalf("invalid url %q: %v", task.URL, err)
	}

	// 2. Fetch.
	t0 := time.Now()
	html, err := s.fetch.Fetch(ctx, task.URL)
	*fetchDur = time.Since(t0)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			return stageResult{}, fatalf("fetch: %v", err)
		}
		return stageResult{}, retryf("fetch: %v", err)
	}

	// 3. Clean.
	t0 = time.Now()
	title, textContent, err := s.clean.Clean(ctx, html)
	*cleanDur = time.Since(t0)
	if err != nil {
		return stageResult{}, retryf("clean: %v", err)
	}
	if textContent == "" {
		return stageResult{}, fatalf("clean: empty extracted text")
	}

	// 4. bookmark_id is derived deterministically downstream by the gateway's
	// upsert (textproc.BookmarkID), keyed off the canonical URL; nothing to do
	// here beyond having validated the URL above.

	// 5. Classify.
	t0 = time.Now()
	modelTags, summary, err := s.classify.Classify(ctx, textContent)
	*classifyDur = time.Since(t0)
	if err != nil {
		return stageResult{}, retryf("classify: %v", err)
	}
	tags := textproc.MergeClassifierTags(task.Tags, modelTags)

	// 6. Chunk.
	t0 = time.Now()
	pieces := textproc.Chunk(textContent)
	*chunkDur = time.Since(t0)

	// 7. Embed.
	t0 = time.Now()
	vectors, err := s.embed.Embed(ctx, pieces)
	*embedDur = time.Since(t0)
	if err != nil {
		return stageResult{}, retryf("embed: %v", err)
	}
	if len(vectors) != len(pieces) {
		return stageResult{}, fatalf("embed: returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	// 8. Persist (atomic): upsert bookmark and replace its chunks in one
	// transaction so a mid-write failure can't lose old chunks while only
	// partially inserting new ones.
	t0 = time.Now()
	chunks := make([]bmdomain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, bmdomain.Chunk{ChunkIndex: i, ChunkText: p, Embedding: vectors[i]})
	}
	if _, err := s.gateway.PersistBookmark(ctx, bmdomain.UpsertInput{
		UserID: task.UserID, URL: task.URL, Domain: domainStr,
		Title: title, TextContent: textContent, Tags: tags, Summary: summary,
	}, chunks); err != nil {
		*persistDur = time.Since(t0)
		return stageResult{}, retryf("persist bookmark: %v", err)
	}
	*persistDur = time.Since(t0)

	return stageResult{summary: summary}, nil
}

// fatalErr marks an error as non-retryable ingestion failure.
type fatalErr struct{ error }

func fatalf(format string, a ...any) error { return fatalErr{perr.InvalidArgf(format, a...)} }
func retryf(format string, a ...any) error { return perr.Unavailablef(format, a...) }

func isFatal(err error) bool {
	_, ok := err.(fatalErr)
	return ok
}
