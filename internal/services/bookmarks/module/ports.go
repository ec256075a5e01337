package module

import (
	"context"

	"bookmarkhub/internal/services/bookmarks/domain"
	bsvc "bookmarkhub/internal/services/bookmarks/service"
)

// Ports returns the module ports.
func (m *Module) Ports() any { return m.ports }

// adaptBookmarksPort exposes the GatewayPort slice of the service for the
// ingestion pipeline to consume as a cross-module port.
type adaptBookmarksPort struct{ svc bsvc.Service }

func (a adaptBookmarksPort) GetBookmark(ctx context.Context, userID, bookmarkID string) (domain.Bookmark, error) {
	return a.svc.GetBookmark(ctx, userID, bookmarkID)
}

func (a adaptBookmarksPort) PersistBookmark(ctx context.Context, in domain.UpsertInput, chunks []domain.Chunk) (domain.Bookmark, error) {
	return a.svc.PersistBookmark(ctx, in, chunks)
}

var _ domain.GatewayPort = adaptBookmarksPort{}
