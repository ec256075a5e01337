// Package service implements the RAG Composer (component G): retrieval,
// prompt assembly, and grounded answering over a user's bookmarks.
package service

import (
	"context"
	"fmt"
	"strings"

	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"
	"bookmarkhub/internal/services/rag/domain"
	"bookmarkhub/internal/services/rag/repo"

	"github.com/google/uuid"
)

// Config controls retrieval breadth and the relevance floor.
type Config struct {
	TopK      int
	Threshold float64 // minimum cosine similarity to keep a chunk
}

// DefaultConfig matches the spec's defaults: top 8, similarity floor 0.25.
func DefaultConfig() Config { return Config{TopK: 8, Threshold: 0.25} }

const systemPrompt = `Answer only from the provided excerpts; cite the bookmark title for any
claim you make. If the excerpts do not contain enough information to answer, say so plainly.`

// Service is the rag composer's behavioural contract.
type Service interface{ domain.ServicePort }

// Svc implements Service over a bound Repo, an Embedder, and an Answerer.
type Svc struct {
	repo repo.Repo
	emb  domain.Embedder
	ans  domain.Answerer
	cfg  Config
}

// New constructs the rag composer service.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], emb domain.Embedder, ans domain.Answerer, cfg Config) *Svc {
	if db == nil {
		panic("rag.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("rag.Service requires a non nil Repo binder")
	}
	if emb == nil {
		panic("rag.Service requires a non nil Embedder")
	}
	if ans == nil {
		panic("rag.Service requires a non nil Answerer")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	return &Svc{repo: binder.Bind(db), emb: emb, ans: ans, cfg: cfg}
}

// Ask creates a session, retrieves grounding chunks, and answers from them.
func (s *Svc) Ask(ctx context.Context, userID, question string) (domain.RagSession, error) {
	sessionID := uuid.NewString()
	if _, err := s.repo.CreateSession(ctx, userID, sessionID, question); err != nil {
		return domain.RagSession{}, err
	}

	vecs, err := s.emb.Embed(ctx, []string{question})
	if err != nil {
		return s.recordFailure(ctx, sessionID, fmt.Sprintf("embedding failed: %v", err))
	}

	rows, err := s.repo.NearestChunks(ctx, userID, vecs[0], s.cfg.TopK)
	if err != nil {
		return domain.RagSession{}, err
	}

	var kept []repo.RowChunk
	for _, c := range rows {
		if c.Score >= s.cfg.Threshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		completed, err := s.repo.CompleteSession(ctx, sessionID, domain.InsufficientContext, nil)
		if err != nil {
			return domain.RagSession{}, err
		}
		return toDomain(completed), nil
	}

	prompt := assemblePrompt(question, kept)
	answer, err := s.ans.Answer(ctx, systemPrompt, prompt)
	if err != nil {
		// Per the design, LLM answering failure does not retry; it is
		// recorded in the session as a terminal audit entry.
		return s.recordFailure(ctx, sessionID, fmt.Sprintf("answer failed: %v", err))
	}

	chunkIDs := make([]string, len(kept))
	for i, c := range kept {
		chunkIDs[i] = c.ChunkID
	}
	completed, err := s.repo.CompleteSession(ctx, sessionID, answer, chunkIDs)
	if err != nil {
		return domain.RagSession{}, err
	}
	return toDomain(completed), nil
}

func (s *Svc) recordFailure(ctx context.Context, sessionID, reason string) (domain.RagSession, error) {
	failed, ferr := s.repo.FailSession(ctx, sessionID, reason)
	if ferr != nil {
		return domain.RagSession{}, ferr
	}
	return toDomain(failed), nil
}

// GetSession fetches a session for polling.
func (s *Svc) GetSession(ctx context.Context, userID, sessionID string) (domain.RagSession, error) {
	row, ok, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return domain.RagSession{}, err
	}
	if !ok {
		return domain.RagSession{}, perr.NotFoundf("rag session %s not found", sessionID)
	}
	return toDomain(row), nil
}

func assemblePrompt(question string, chunks []repo.RowChunk) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nExcerpts:\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "- [%s](%s): %s\n", c.Title, c.URL, c.ChunkText)
	}
	return b.String()
}

func toDomain(r repo.RowSession) domain.RagSession {
	return domain.RagSession{
		SessionID:      r.SessionID,
		UserID:         r.UserID,
		Question:       r.Question,
		Answer:         r.Answer,
		RelevantChunks: r.RelevantChunks,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
