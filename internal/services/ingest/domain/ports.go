// Package domain declares the Ingestion Pipeline's (component E) external
// dependencies as narrow ports, kept independent of any concrete adapter
// package so the orchestrator stays testable with fakes.
package domain

import "context"

// Fetcher retrieves the raw HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)
}

// Cleaner extracts readable content from raw HTML.
type Cleaner interface {
	Clean(ctx context.Context, html string) (title, textContent string, err error)
}

// Classifier proposes tags and a summary for extracted text.
type Classifier interface {
	Classify(ctx context.Context, text string) (tags []string, summary string, err error)
}

// Embedder batch-embeds chunk text into fixed-width vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
