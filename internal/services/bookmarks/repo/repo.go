// Package repo provides postgres access for bookmarks, chunks, and tags.
package repo

import (
	"context"
	"time"

	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"

	"github.com/pgvector/pgvector-go"
)

// RowBookmark is a bookmark row as stored.
type RowBookmark struct {
	BookmarkID  string
	UserID      string
	URL         string
	Domain      string
	Title       string
	TextContent string
	Tags        []string
	Summary     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RowChunk is a chunk row as stored, embedding included.
type RowChunk struct {
	ChunkID    string
	BookmarkID string
	UserID     string
	ChunkIndex int
	ChunkText  string
	Embedding  []float32
	CreatedAt  time.Time
}

// RowTagCount is one row of the tag facet.
type RowTagCount struct {
	Tag   string
	Count int
}

// Repo is the Storage Gateway's bookmark+chunk contract.
type Repo interface {
	FindByURLForUpdate(ctx context.Context, userID, url string) (RowBookmark, bool, error)
	Insert(ctx context.Context, b RowBookmark) error
	Update(ctx context.Context, b RowBookmark) error
	GetByID(ctx context.Context, userID, bookmarkID string) (RowBookmark, bool, error)
	DeleteCascade(ctx context.Context, userID, bookmarkID string) error
	SetTags(ctx context.Context, userID, bookmarkID string, tags []string) (RowBookmark, error)
	List(ctx context.Context, userID string, pageSize int, cursorCreatedAt time.Time, cursorID string) ([]RowBookmark, error)
	ReplaceChunks(ctx context.Context, userID, bookmarkID string, chunks []RowChunk) error
	TagCounts(ctx context.Context, userID string) ([]RowTagCount, error)
	ByTag(ctx context.Context, userID, tag string) ([]RowBookmark, error)
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

func (r *queries) FindByURLForUpdate(ctx context.Context, userID, url string) (RowBookmark, bool, error) {
	const sql = `
select bookmark_id, user_id, url, domain, title, text_content, tags,
       coalesce(summary, ''), created_at, updated_at
from bookmarks
where user_id = $1 and url = $2
for update`
	var b RowBookmark
	err := r.q.QueryRow(ctx, sql, userID, url).Scan(
		&b.BookmarkID, &b.UserID, &b.URL, &b.Domain, &b.Title, &b.TextContent,
		&b.Tags, &b.Summary, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if perr.IsNoRows(err) {
			return RowBookmark{}, false, nil
		}
		return RowBookmark{}, false, perr.FromPostgresWithField(err, "find bookmark by url")
	}
	return b, true, nil
}

func (r *queries) Insert(ctx context.Context, b RowBookmark) error {
	const sql = `
insert into bookmarks (bookmark_id, user_id, url, domain, title, text_content, tags, summary, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, nullif($8, ''), now(), now())`
	_, err := r.q.Exec(ctx, sql, b.BookmarkID, b.UserID, b.URL, b.Domain, b.Title, b.TextContent, b.Tags, b.Summary)
	if err != nil {
		return perr.FromPostgresWithField(err, "insert bookmark")
	}
	return nil
}

func (r *queries) Update(ctx context.Context, b RowBookmark) error {
	const sql = `
update bookmarks
set title = $3, text_content = $4, tags = $5, summary = nullif($6, ''), updated_at = now()
where user_id = $1 and bookmark_id = $2`
	ct, err := r.q.Exec(ctx, sql, b.UserID, b.BookmarkID, b.Title, b.TextContent, b.Tags, b.Summary)
	if err != nil {
		return perr.FromPostgresWithField(err, "update bookmark")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("bookmark %s not found", b.BookmarkID)
	}
	return nil
}

func (r *queries) GetByID(ctx context.Context, userID, bookmarkID string) (RowBookmark, bool, error) {
	const sql = `
select bookmark_id, user_id, url, domain, title, text_content, tags,
       coalesce(summary, ''), created_at, updated_at
from bookmarks
where user_id = $1 and bookmark_id = $2`
	var b RowBookmark
	err := r.q.QueryRow(ctx, sql, userID, bookmarkID).Scan(
		&b.BookmarkID, &b.UserID, &b.URL, &b.Domain, &b.Title, &b.TextContent,
		&b.Tags, &b.Summary, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if perr.IsNoRows(err) {
			return RowBookmark{}, false, nil
		}
		return RowBookmark{}, false, perr.FromPostgresWithField(err, "get bookmark")
	}
	return b, true, nil
}

func (r *queries) DeleteCascade(ctx context.Context, userID, bookmarkID string) error {
	const sql = `delete from bookmarks where user_id = $1 and bookmark_id = $2`
	ct, err := r.q.Exec(ctx, sql, userID, bookmarkID)
	if err != nil {
		return perr.FromPostgresWithField(err, "delete bookmark")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("bookmark %s not found", bookmarkID)
	}
	return nil
}

func (r *queries) SetTags(ctx context.Context, userID, bookmarkID string, tags []string) (RowBookmark, error) {
	const sql = `
update bookmarks
set tags = $3, updated_at = now()
where user_id = $1 and bookmark_id = $2
returning bookmark_id, user_id, url, domain, title, text_content, tags,
          coalesce(summary, ''), created_at, updated_at`
	var b RowBookmark
	err := r.q.QueryRow(ctx, sql, userID, bookmarkID, tags).Scan(
		&b.BookmarkID, &b.UserID, &b.URL, &b.Domain, &b.Title, &b.TextContent,
		&b.Tags, &b.Summary, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if perr.IsNoRows(err) {
			return RowBookmark{}, perr.NotFoundf("bookmark %s not found", bookmarkID)
		}
		return RowBookmark{}, perr.FromPostgresWithField(err, "set tags")
	}
	return b, nil
}

func (r *queries) List(ctx context.Context, userID string, pageSize int, cursorCreatedAt time.Time, cursorID string) ([]RowBookmark, error) {
	const sql = `
select bookmark_id, user_id, url, domain, title, text_content, tags,
       coalesce(summary, ''), created_at, updated_at
from bookmarks
where user_id = $1
  and ($2::timestamptz is null or (created_at, bookmark_id) < ($2, $3))
order by created_at desc, bookmark_id desc
limit $4`
	var cursorTime any
	if !cursorCreatedAt.IsZero() {
		cursorTime = cursorCreatedAt
	}
	rows, err := r.q.Query(ctx, sql, userID, cursorTime, cursorID, pageSize)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "list bookmarks")
	}
	defer rows.Close()
	var out []RowBookmark
	for rows.Next() {
		var b RowBookmark
		if err := rows.Scan(
			&b.BookmarkID, &b.UserID, &b.URL, &b.Domain, &b.Title, &b.TextContent,
			&b.Tags, &b.Summary, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *queries) ReplaceChunks(ctx context.Context, userID, bookmarkID string, chunks []RowChunk) error {
	const del = `delete from bookmark_chunks where user_id = $1 and bookmark_id = $2`
	if _, err := r.q.Exec(ctx, del, userID, bookmarkID); err != nil {
		return perr.FromPostgresWithField(err, "delete chunks")
	}
	const ins = `
insert into bookmark_chunks (chunk_id, bookmark_id, user_id, chunk_index, chunk_text, embedding, created_at)
values ($1, $2, $3, $4, $5, $6, now())`
	for _, c := range chunks {
		vec := pgvector.NewVector(c.Embedding)
		if _, err := r.q.Exec(ctx, ins, c.ChunkID, bookmarkID, userID, c.ChunkIndex, c.ChunkText, vec); err != nil {
			return perr.FromPostgresWithField(err, "insert chunk")
		}
	}
	return nil
}

func (r *queries) TagCounts(ctx context.Context, userID string) ([]RowTagCount, error) {
	const sql = `
select tag, count(*) as cnt
from bookmarks, unnest(tags) as tag
where user_id = $1
group by tag
order by cnt desc, tag asc`
	rows, err := r.q.Query(ctx, sql, userID)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "tag counts")
	}
	defer rows.Close()
	var out []RowTagCount
	for rows.Next() {
		var t RowTagCount
		if err := rows.Scan(&t.Tag, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *queries) ByTag(ctx context.Context, userID, tag string) ([]RowBookmark, error) {
	const sql = `
select bookmark_id, user_id, url, domain, title, text_content, tags,
       coalesce(summary, ''), created_at, updated_at
from bookmarks
where user_id = $1 and $2 = any(tags)
order by created_at desc`
	rows, err := r.q.Query(ctx, sql, userID, tag)
	if err != nil {
		return nil, perr.FromPostgresWithField(err, "bookmarks by tag")
	}
	defer rows.Close()
	var out []RowBookmark
	for rows.Next() {
		var b RowBookmark
		if err := rows.Scan(
			&b.BookmarkID, &b.UserID, &b.URL, &b.Domain, &b.Title, &b.TextContent,
			&b.Tags, &b.Summary, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
