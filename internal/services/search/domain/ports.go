package domain

import "context"

// ServicePort is the Search Engine's behavioural contract.
type ServicePort interface {
	// Lexical runs a full-text query (or lists all bookmarks newest-first for
	// an empty query) and returns scored, snippeted hits.
	Lexical(ctx context.Context, userID, query string, limit int) ([]Hit, error)

	// Semantic embeds query and returns the nearest bookmarks by cosine
	// distance, one hit per bookmark (its best-scoring chunk).
	Semantic(ctx context.Context, userID, query string, limit int) ([]Hit, error)

	// Fused blends Lexical and Semantic results for the same query.
	Fused(ctx context.Context, userID, query string, limit int, w Weights) ([]Hit, error)
}

// Embedder is the narrow dependency Semantic/Fused need to vectorise a query.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
