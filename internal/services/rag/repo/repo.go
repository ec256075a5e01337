// Package repo provides postgres access for RAG sessions and chunk-level
// nearest-neighbour retrieval.
package repo

import (
	"context"
	"time"

	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"

	"github.com/pgvector/pgvector-go"
)

// RowSession is a rag_sessions row as stored.
type RowSession struct {
	SessionID      string
	UserID         string
	Question       string
	Answer         string
	RelevantChunks []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RowChunk is one candidate chunk with its similarity to a query vector.
type RowChunk struct {
	ChunkID    string
	BookmarkID string
	Title      string
	URL        string
	ChunkText  string
	Score      float64
}

// Repo is the RAG composer's postgres contract.
type Repo interface {
	CreateSession(ctx context.Context, userID, sessionID, question string) (RowSession, error)
	CompleteSession(ctx context.Context, sessionID, answer string, chunkIDs []string) (RowSession, error)
	FailSession(ctx context.Context, sessionID, answer string) (RowSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (RowSession, bool, error)
	// NearestChunks returns the k chunks closest to query within the user's
	// bookmarks, one row per chunk (no per-bookmark folding).
	NearestChunks(ctx context.Context, userID string, query []float32, k int) ([]RowChunk, error)
}

type (
	// PG creates bound queries for a given Queryer.
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder.
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation.
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) CreateSession(ctx context.Context, userID, sessionID, question string) (RowSession, error) {
	const sql = `
insert into rag_sessions (session_id, user_id, question, answer, relevant_chunks, created_at, updated_at)
values ($1, $2, $3, '', '{}', now(), now())
returning session_id, user_id, question, answer, relevant_chunks, created_at, updated_at`
	row := r.q.QueryRow(ctx, sql, sessionID, userID, question)
	var s RowSession
	if err := row.Scan(&s.SessionID, &s.UserID, &s.Question, &s.Answer, &s.RelevantChunks, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return RowSession{}, perr.FromPostgresWithField(err, "create rag session")
	}
	return s, nil
}

func (r *queries) CompleteSession(ctx context.Context, sessionID, answer string, chunkIDs []string) (RowSession, error) {
	const sql = `
update rag_sessions
set answer = $2, relevant_chunks = $3, updated_at = now()
where session_id = $1
returning session_id, user_id, question, answer, relevant_chunks, created_at, updated_at`
	row := r.q.QueryRow(ctx, sql, sessionID, answer, chunkIDs)
	var s RowSession
	if err := row.Scan(&s.SessionID, &s.UserID, &s.Question, &s.Answer, &s.RelevantChunks, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return RowSession{}, perr.FromPostgresWithField(err, "complete rag session")
	}
	return s, nil
}

func (r *queries) FailSession(ctx context.Context, sessionID, answer string) (RowSession, error) {
	const sql = `
update rag_sessions
set answer = $2, updated_at = now()
where session_id = $1
returning session_id, user_id, question, answer, relevant_chunks, created_at, updated_at`
	row := r.q.QueryRow(ctx, sql, sessionID, answer)
	var s RowSession
	if err := row.Scan(&s.SessionID, &s.UserID, &s.Question, &s.Answer, &s.RelevantChunks, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return RowSession{}, perr.FromPostgresWithField(err, "fail rag session")
	}
	return s, nil
}

func (r *queries) GetSession(ctx context.Context, userID, sessionID string) (RowSession, bool, error) {
	const sql = `
select session_id, user_id, question, answer, relevant_chunks, created_at, updated_at
from rag_sessions
where session_id = $1 and user_id = $2`
	row := r.q.QueryRow(ctx, sql, sessionID, userID)
	var s RowSession
	err := row.Scan(&s.SessionID, &s.UserID, &s.Question, &s.Answer, &s.RelevantChunks, &s.CreatedAt, &s.UpdatedAt)
	if perr.IsNoRows(err) {
		return RowSession{}, false, nil
	}
	if err != nil {
		return RowSession{}, false, perr.FromPostgresWithField(err, "get rag session")
	}
	return s, true, nil
}

func (r *queries) NearestChunks(ctx context.Context, userID string, query []float32, k int) ([]RowChunk, error) {
	const sql = `
select c.chunk_id, c.bookmark_id, b.title, b.url, c.chunk_text, 1 - (c.embedding <=> $2) as score
from bookmark_chunks c
join bookmarks b on b.bookmark_id = c.bookmark_id and b.user_id = c.user_id
where c.user_id = $1
order by c.embedding <=> $2 asc
limit $3`
	vec := pgvector.NewVector(query)
	rows, err := r.q.Query(ctx, sql, userID, vec, k)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "nearest chunks")
	}
	defer rows.Close()
	var out []RowChunk
	for rows.Next() {
		var c RowChunk
		if err := rows.Scan(&c.ChunkID, &c.BookmarkID, &c.Title, &c.URL, &c.ChunkText, &c.Score); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
