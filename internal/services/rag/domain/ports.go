package domain

import "context"

// ServicePort is the RAG Composer's behavioural contract.
type ServicePort interface {
	// Ask creates a session, retrieves grounding chunks, and calls the LLM
	// for a cited answer. Returns the completed (or insufficient-context)
	// session; embedding and LLM failures are recorded on the session, not
	// returned as err, while store failures are returned as err.
	Ask(ctx context.Context, userID, question string) (RagSession, error)

	// GetSession fetches a session for polling.
	GetSession(ctx context.Context, userID, sessionID string) (RagSession, error)
}

// Embedder vectorises the question for chunk retrieval.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Answerer runs the grounded chat completion.
type Answerer interface {
	Answer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
