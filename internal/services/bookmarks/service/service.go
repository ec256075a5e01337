// Package service implements the Storage Gateway (component A): typed,
// per-user-scoped access to bookmarks and chunks, with upsert/tag workflows
// that enforce the spec's merge semantics.
package service

import (
	"context"
	"time"

	"bookmarkhub/internal/core/textproc"
	"bookmarkhub/internal/modkit/repokit"
	perr "bookmarkhub/internal/platform/errors"
	"bookmarkhub/internal/services/bookmarks/domain"
	"bookmarkhub/internal/services/bookmarks/repo"

	"github.com/google/uuid"
)

// Service is the Storage Gateway's behavioural contract.
type Service interface{ domain.ServicePort }

// Svc implements Service over a bound Repo.
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
}

// New creates a new bookmarks gateway service.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("bookmarks.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("bookmarks.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// UpsertBookmark implements the §4.5 upsert rule: if the (user, url) pair
// already exists, title/text/summary are kept unless they were previously
// empty, tags are unioned, and updated_at is touched; otherwise a new row is
// inserted with a deterministic bookmark_id.
func (s *Svc) UpsertBookmark(ctx context.Context, in domain.UpsertInput) (domain.Bookmark, error) {
	var out repo.RowBookmark
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		row, err := upsertBookmarkTx(ctx, s.binder.Bind(q), in)
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, err
	}
	return toDomain(out), nil
}

// upsertBookmarkTx runs the §4.5 upsert rule against a repo already bound to
// an in-flight transaction: if the (user, url) pair already exists,
// title/text/summary are kept unless they were previously empty, tags are
// unioned, and updated_at is touched; otherwise a new row is inserted with a
// deterministic bookmark_id.
func upsertBookmarkTx(ctx context.Context, r repo.Repo, in domain.UpsertInput) (repo.RowBookmark, error) {
	newTags := textproc.NormalizeTags(in.Tags)

	existing, found, err := r.FindByURLForUpdate(ctx, in.UserID, in.URL)
	if err != nil {
		return repo.RowBookmark{}, err
	}
	if found {
		merged := existing
		if merged.Title == "" {
			merged.Title = in.Title
		}
		if merged.TextContent == "" {
			merged.TextContent = in.TextContent
		}
		if merged.Summary == "" {
			merged.Summary = in.Summary
		}
		merged.Tags = textproc.UnionTags(existing.Tags, newTags)
		if err := r.Update(ctx, merged); err != nil {
			return repo.RowBookmark{}, err
		}
		return merged, nil
	}

	id, err := textproc.BookmarkID(in.URL)
	if err != nil {
		return repo.RowBookmark{}, perr.InvalidArgf("invalid url %q: %v", in.URL, err)
	}
	row := repo.RowBookmark{
		BookmarkID:  id,
		UserID:      in.UserID,
		URL:         in.URL,
		Domain:      in.Domain,
		Title:       in.Title,
		TextContent: in.TextContent,
		Tags:        newTags,
		Summary:     in.Summary,
	}
	if err := r.Insert(ctx, row); err != nil {
		return repo.RowBookmark{}, err
	}
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt
	return row, nil
}

// DeleteBookmarkCascade removes a bookmark and, via FK, its chunks.
func (s *Svc) DeleteBookmarkCascade(ctx context.Context, userID, bookmarkID string) error {
	return s.Repo.DeleteCascade(ctx, userID, bookmarkID)
}

// SetTags replaces a bookmark's tag set outright.
func (s *Svc) SetTags(ctx context.Context, userID, bookmarkID string, tags []string) (domain.Bookmark, error) {
	row, err := s.Repo.SetTags(ctx, userID, bookmarkID, textproc.NormalizeTags(tags))
	if err != nil {
		return domain.Bookmark{}, err
	}
	return toDomain(row), nil
}

// AppendTags unions new tags into the existing set, preserving first-seen
// order, serialised per bookmark by the update transaction.
func (s *Svc) AppendTags(ctx context.Context, userID, bookmarkID string, tags []string) (domain.Bookmark, error) {
	newTags := textproc.NormalizeTags(tags)
	var out repo.RowBookmark
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		existing, found, err := r.GetByID(ctx, userID, bookmarkID)
		if err != nil {
			return err
		}
		if !found {
			return perr.NotFoundf("bookmark %s not found", bookmarkID)
		}
		// re-read under a row lock so concurrent appends to one bookmark queue up
		locked, found, err := r.FindByURLForUpdate(ctx, userID, existing.URL)
		if err != nil {
			return err
		}
		if !found {
			return perr.NotFoundf("bookmark %s not found", bookmarkID)
		}
		merged := textproc.UnionTags(locked.Tags, newTags)
		updated, err := r.SetTags(ctx, userID, bookmarkID, merged)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, err
	}
	return toDomain(out), nil
}

// ListBookmarks returns a page of the user's bookmarks, newest first.
func (s *Svc) ListBookmarks(ctx context.Context, userID string, paging domain.Paging) (domain.Page, error) {
	size := paging.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	if size > domain.MaxPageSize {
		size = domain.MaxPageSize
	}

	var cursorTime time.Time
	var cursorID string
	if paging.Cursor != "" {
		t, id, err := decodeCursor(paging.Cursor)
		if err != nil {
			return domain.Page{}, perr.InvalidArgf("invalid cursor")
		}
		cursorTime, cursorID = t, id
	}

	rows, err := s.Repo.List(ctx, userID, size+1, cursorTime, cursorID)
	if err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{}
	hasMore := len(rows) > size
	if hasMore {
		rows = rows[:size]
	}
	page.Items = make([]domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		page.Items = append(page.Items, toDomain(r))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.BookmarkID)
	}
	return page, nil
}

// GetBookmark fetches a single bookmark owned by the user.
func (s *Svc) GetBookmark(ctx context.Context, userID, bookmarkID string) (domain.Bookmark, error) {
	row, found, err := s.Repo.GetByID(ctx, userID, bookmarkID)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if !found {
		return domain.Bookmark{}, perr.NotFoundf("bookmark %s not found", bookmarkID)
	}
	return toDomain(row), nil
}

// ReplaceChunks atomically replaces a bookmark's chunk set.
func (s *Svc) ReplaceChunks(ctx context.Context, userID, bookmarkID string, chunks []domain.Chunk) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).ReplaceChunks(ctx, userID, bookmarkID, chunkRows(userID, bookmarkID, chunks))
	})
}

// PersistBookmark implements the §4.5 step 8 / §9 atomic-persist contract:
// in a single transaction, upsert the bookmark and replace its chunk set, so
// a mid-write failure can never leave the old chunks deleted without the new
// ones in place.
func (s *Svc) PersistBookmark(ctx context.Context, in domain.UpsertInput, chunks []domain.Chunk) (domain.Bookmark, error) {
	var out repo.RowBookmark
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		row, err := upsertBookmarkTx(ctx, r, in)
		if err != nil {
			return err
		}
		if err := r.ReplaceChunks(ctx, in.UserID, row.BookmarkID, chunkRows(in.UserID, row.BookmarkID, chunks)); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, err
	}
	return toDomain(out), nil
}

func chunkRows(userID, bookmarkID string, chunks []domain.Chunk) []repo.RowChunk {
	rows := make([]repo.RowChunk, 0, len(chunks))
	for i, c := range chunks {
		id := c.ChunkID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, repo.RowChunk{
			ChunkID:    id,
			BookmarkID: bookmarkID,
			UserID:     userID,
			ChunkIndex: i,
			ChunkText:  c.ChunkText,
			Embedding:  c.Embedding,
		})
	}
	return rows
}

// TagCounts returns the user's tag facet, sorted by count desc then tag asc.
func (s *Svc) TagCounts(ctx context.Context, userID string) ([]domain.TagCount, error) {
	rows, err := s.Repo.TagCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TagCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.TagCount{Tag: r.Tag, Count: r.Count})
	}
	return out, nil
}

// BookmarksByTag returns bookmarks carrying the given tag, newest first.
func (s *Svc) BookmarksByTag(ctx context.Context, userID, tag string) ([]domain.Bookmark, error) {
	rows, err := s.Repo.ByTag(ctx, userID, textproc.NormalizeTag(tag))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDomain(r))
	}
	return out, nil
}

func toDomain(r repo.RowBookmark) domain.Bookmark {
	return domain.Bookmark{
		BookmarkID:  r.BookmarkID,
		UserID:      r.UserID,
		URL:         r.URL,
		Domain:      r.Domain,
		Title:       r.Title,
		TextContent: r.TextContent,
		Tags:        r.Tags,
		Summary:     r.Summary,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
