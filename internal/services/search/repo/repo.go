// Package repo provides postgres access for lexical, tag-facet, and semantic
// retrieval over bookmarks and their chunks.
package repo

import (
	"context"
	"time"

	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"

	"github.com/pgvector/pgvector-go"
)

// RowHit is a scored bookmark match.
type RowHit struct {
	BookmarkID string
	Title      string
	URL        string
	Score      float64
	Snippet    string
	CreatedAt  time.Time
}

// Repo is the search engine's postgres contract.
type Repo interface {
	// Lexical runs a to_tsquery search, or lists all bookmarks newest-first
	// when tsquery is empty.
	Lexical(ctx context.Context, userID, tsquery string, limit int) ([]RowHit, error)
	// Semantic returns the nearest chunks by cosine distance, one row per
	// bookmark (its best-scoring chunk), within the given user's vectors.
	Semantic(ctx context.Context, userID string, query []float32, limit int) ([]RowHit, error)
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

func (r *queries) Lexical(ctx context.Context, userID, tsquery string, limit int) ([]RowHit, error) {
	var sql string
	var args []any
	if tsquery == "" {
		sql = `
select bookmark_id, title, url, 0::float8 as score, '' as snippet, created_at
from bookmarks
where user_id = $1
order by created_at desc
limit $2`
		args = []any{userID, limit}
	} else {
		sql = `
select bookmark_id, title, url,
       ts_rank(search_tokens, query) as score,
       ts_headline('english', text_content, query, 'StartSel=<b>, StopSel=</b>, MaxFragments=1') as snippet,
       created_at
from bookmarks, to_tsquery('english', $2) as query
where user_id = $1 and search_tokens @@ query
order by score desc, created_at desc
limit $3`
		args = []any{userID, tsquery, limit}
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "lexical search")
	}
	defer rows.Close()
	var out []RowHit
	for rows.Next() {
		var h RowHit
		if err := rows.Scan(&h.BookmarkID, &h.Title, &h.URL, &h.Score, &h.Snippet, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Semantic ranks by cosine distance (pgvector's <=> operator, backed by an
// ivfflat index on bookmark_chunks.embedding) and folds multiple matching
// chunks per bookmark down to that bookmark's single best-scoring hit.
func (r *queries) Semantic(ctx context.Context, userID string, query []float32, limit int) ([]RowHit, error) {
	const sql = `
select b.bookmark_id, b.title, b.url, b.created_at, min(c.embedding <=> $2) as distance
from bookmark_chunks c
join bookmarks b on b.bookmark_id = c.bookmark_id and b.user_id = c.user_id
where c.user_id = $1
group by b.bookmark_id, b.title, b.url, b.created_at
order by distance asc
limit $3`
	vec := pgvector.NewVector(query)
	rows, err := r.q.Query(ctx, sql, userID, vec, limit)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "semantic search")
	}
	defer rows.Close()
	var out []RowHit
	for rows.Next() {
		var h RowHit
		var distance float64
		if err := rows.Scan(&h.BookmarkID, &h.Title, &h.URL, &h.CreatedAt, &distance); err != nil {
			return nil, err
		}
		h.Score = 1 - distance // cosine distance -> similarity
		out = append(out, h)
	}
	return out, rows.Err()
}
