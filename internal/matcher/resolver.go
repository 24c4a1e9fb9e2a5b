package matcher

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SeriesResolver returns the provider IDs of a target series.
type SeriesResolver interface {
	SeriesProviderIDs(ctx context.Context, seriesID string) (map[string]string, error)
}

// SeriesResolverFunc adapts a function to SeriesResolver.
type SeriesResolverFunc func(ctx context.Context, seriesID string) (map[string]string, error)

func (f SeriesResolverFunc) SeriesProviderIDs(ctx context.Context, seriesID string) (map[string]string, error) {
	return f(ctx, seriesID)
}

type seriesEntry struct {
	ids map[string]string
	err error
}

// CachedSeriesResolver memoizes series lookups, failures included, so each
// series costs at most one request per run while it stays in the cache.
// Context cancellation is never cached.
type CachedSeriesResolver struct {
	next  SeriesResolver
	cache *lru.Cache[string, seriesEntry]
}

// NewCachedSeriesResolver wraps next with an LRU cache holding up to size series.
func NewCachedSeriesResolver(next SeriesResolver, size int) (*CachedSeriesResolver, error) {
	if next == nil {
		return nil, fmt.Errorf("series resolver: nil delegate")
	}
	cache, err := lru.New[string, seriesEntry](size)
	if err != nil {
		return nil, fmt.Errorf("series resolver cache: %w", err)
	}
	return &CachedSeriesResolver{next: next, cache: cache}, nil
}

func (r *CachedSeriesResolver) SeriesProviderIDs(ctx context.Context, seriesID string) (map[string]string, error) {
	if entry, ok := r.cache.Get(seriesID); ok {
		return entry.ids, entry.err
	}
	ids, err := r.next.SeriesProviderIDs(ctx, seriesID)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	r.cache.Add(seriesID, seriesEntry{ids: ids, err: err})
	return ids, err
}
