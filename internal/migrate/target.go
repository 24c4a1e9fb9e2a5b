package migrate

import (
	"context"

	"watchmigrate/internal/catalog"
)

// Target is the catalog receiving watched state.
type Target interface {
	ResolveUser(ctx context.Context, name string) (string, error)
	ListAllItems(ctx context.Context, userID string) ([]catalog.LibraryRecord, error)
	SeriesProviderIDs(ctx context.Context, userID, seriesID string) (map[string]string, error)
	MarkWatched(ctx context.Context, userID, itemID string) error
}
