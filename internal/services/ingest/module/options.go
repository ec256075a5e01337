package module

import (
	"time"

	"bookmarkhub/internal/platform/config"
)

// Options controls the ingestion worker's concurrency, polling, and the
// upstream readability/LLM endpoints it calls.
type Options struct {
	Workers         int
	PollInterval    time.Duration
	LeaseVisibility time.Duration
	DrainTimeout    time.Duration

	ReadabilityURL string

	LLMBaseURL    string
	LLMChatModel  string
	LLMEmbedModel string

	UpstreamMaxConnsPerHost int
}

// FromConfig reads the canonical ambient-stack queue/worker and upstream
// variable names: WORKER_POOL_SIZE, POLL_INTERVAL_MS, VISIBILITY_TIMEOUT_S,
// DRAIN_TIMEOUT_S, READABILITY_URL, OLLAMA_URL, OLLAMA_TEXT_MODEL,
// OLLAMA_EMBEDDING_MODEL, UPSTREAM_MAX_CONNS_PER_HOST.
func FromConfig(cfg config.Conf) Options {
	return Options{
		Workers:                 cfg.MayInt("WORKER_POOL_SIZE", 4),
		PollInterval:            time.Duration(cfg.MayInt("POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		LeaseVisibility:         time.Duration(cfg.MayInt("VISIBILITY_TIMEOUT_S", 300)) * time.Second,
		DrainTimeout:            time.Duration(cfg.MayInt("DRAIN_TIMEOUT_S", 30)) * time.Second,
		ReadabilityURL:          cfg.MayString("READABILITY_URL", "http://localhost:8787/clean"),
		LLMBaseURL:              cfg.MayString("OLLAMA_URL", "http://localhost:11434"),
		LLMChatModel:            cfg.MayString("OLLAMA_TEXT_MODEL", "llama3"),
		LLMEmbedModel:           cfg.MayString("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		UpstreamMaxConnsPerHost: cfg.MayInt("UPSTREAM_MAX_CONNS_PER_HOST", 16),
	}
}
