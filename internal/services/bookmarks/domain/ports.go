package domain

import "context"

// ServicePort is the Storage Gateway's surface for bookmark and chunk
// operations (component A). Every method takes user_id and must never return
// or mutate another user's rows.
type ServicePort interface {
	UpsertBookmark(ctx context.Context, in UpsertInput) (Bookmark, error)
	DeleteBookmarkCascade(ctx context.Context, userID, bookmarkID string) error
	SetTags(ctx context.Context, userID, bookmarkID string, tags []string) (Bookmark, error)
	AppendTags(ctx context.Context, userID, bookmarkID string, tags []string) (Bookmark, error)
	ListBookmarks(ctx context.Context, userID string, paging Paging) (Page, error)
	GetBookmark(ctx context.Context, userID, bookmarkID string) (Bookmark, error)
	ReplaceChunks(ctx context.Context, userID, bookmarkID string, chunks []Chunk) error
	TagCounts(ctx context.Context, userID string) ([]TagCount, error)
	BookmarksByTag(ctx context.Context, userID, tag string) ([]Bookmark, error)
	PersistBookmark(ctx context.Context, in UpsertInput, chunks []Chunk) (Bookmark, error)
}

// GatewayPort is the narrow slice of ServicePort that the ingestion pipeline
// depends on to persist a fetched bookmark and its chunks. Keeping it
// separate means ingest doesn't gain access to tag-mutation endpoints it has
// no business calling.
type GatewayPort interface {
	GetBookmark(ctx context.Context, userID, bookmarkID string) (Bookmark, error)
	// PersistBookmark upserts the bookmark and replaces its chunk set in a
	// single transaction, per §4.5 step 8's atomic-persist contract.
	PersistBookmark(ctx context.Context, in UpsertInput, chunks []Chunk) (Bookmark, error)
}
