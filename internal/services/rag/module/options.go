package module

import (
	"bookmarkhub/internal/platform/config"
	"bookmarkhub/internal/services/rag/service"
)

// Options controls the rag composer's retrieval breadth, relevance floor,
// and LLM upstream.
type Options struct {
	TopK      int
	Threshold float64

	LLMBaseURL    string
	LLMChatModel  string
	LLMEmbedModel string

	UpstreamMaxConnsPerHost int
}

// FromConfig reads rag-specific retrieval tuning under the RAG_ prefix, and
// the ambient-stack upstream variables shared with the ingestion pipeline and
// search engine: OLLAMA_URL, OLLAMA_TEXT_MODEL, OLLAMA_EMBEDDING_MODEL,
// UPSTREAM_MAX_CONNS_PER_HOST.
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RAG_")
	def := service.DefaultConfig()
	return Options{
		TopK:                    c.MayInt("TOP_K", def.TopK),
		Threshold:               c.MayFloat64("THRESHOLD", def.Threshold),
		LLMBaseURL:              cfg.MayString("OLLAMA_URL", "http://localhost:11434"),
		LLMChatModel:            cfg.MayString("OLLAMA_TEXT_MODEL", "llama3"),
		LLMEmbedModel:           cfg.MayString("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		UpstreamMaxConnsPerHost: cfg.MayInt("UPSTREAM_MAX_CONNS_PER_HOST", 16),
	}
}
