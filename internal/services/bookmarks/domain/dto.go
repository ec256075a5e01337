// Package domain holds the Storage Gateway's entity types and port contracts
// for bookmarks, chunks, and tag operations.
package domain

import "time"

// Bookmark is a user's saved, ingested page.
type Bookmark struct {
	BookmarkID  string    `json:"bookmark_id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Title       string    `json:"title"`
	TextContent string    `json:"text_content"`
	Tags        []string  `json:"tags"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chunk is a bounded text window over a bookmark's body with its embedding.
type Chunk struct {
	ChunkID    string    `json:"chunk_id"`
	BookmarkID string    `json:"bookmark_id"`
	UserID     string    `json:"user_id"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkText  string    `json:"chunk_text"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertInput is what the ingestion pipeline persists at the end of a
// successful run. Title/TextContent/Summary are only applied if the existing
// row has them empty; Tags are unioned with whatever is already stored.
type UpsertInput struct {
	UserID      string
	URL         string
	Domain      string
	Title       string
	TextContent string
	Tags        []string
	Summary     string
}

// Paging is a cursor over (created_at DESC, bookmark_id).
type Paging struct {
	PageSize int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=200"`
	Cursor   string `json:"cursor,omitempty"`
}

// Page wraps a page of bookmarks with the cursor to request the next one.
type Page struct {
	Items      []Bookmark `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// SetTagsInput replaces a bookmark's tag set outright.
type SetTagsInput struct {
	Tags []string `json:"tags" validate:"required,min=1,dive,min=1,max=64"`
}

// AppendTagsInput unions new tags into a bookmark's existing tag set.
type AppendTagsInput struct {
	Tags []string `json:"tags" validate:"required,min=1,dive,min=1,max=64"`
}

// TagCount is one row of the tag facet.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

const (
	// MaxPageSize is the hard cap on any paginated list.
	MaxPageSize = 200
	// DefaultPageSize is used when a caller doesn't specify one.
	DefaultPageSize = 50
)
