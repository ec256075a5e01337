package module

import "bookmarkhub/internal/platform/config"

// Options controls the search engine's embedding upstream.
type Options struct {
	LLMBaseURL    string
	LLMEmbedModel string

	UpstreamMaxConnsPerHost int
}

// FromConfig reads the ambient-stack upstream variables shared with the
// ingestion pipeline: OLLAMA_URL, OLLAMA_EMBEDDING_MODEL,
// UPSTREAM_MAX_CONNS_PER_HOST.
func FromConfig(cfg config.Conf) Options {
	return Options{
		LLMBaseURL:              cfg.MayString("OLLAMA_URL", "http://localhost:11434"),
		LLMEmbedModel:           cfg.MayString("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		UpstreamMaxConnsPerHost: cfg.MayInt("UPSTREAM_MAX_CONNS_PER_HOST", 16),
	}
}
