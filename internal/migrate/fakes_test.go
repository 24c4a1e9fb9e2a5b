package migrate_test

import (
	"context"
	"errors"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/collector"
)

type fakeTarget struct {
	user        string
	records     []catalog.LibraryRecord
	series      map[string]map[string]string
	markErr     map[string]error
	marked      []string
	seriesCalls int
	listErr     error
}

func (f *fakeTarget) ResolveUser(_ context.Context, name string) (string, error) {
	if name != f.user {
		return "", errors.New("user not found")
	}
	return "uid-" + name, nil
}

func (f *fakeTarget) ListAllItems(_ context.Context, userID string) ([]catalog.LibraryRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeTarget) SeriesProviderIDs(_ context.Context, _ string, seriesID string) (map[string]string, error) {
	f.seriesCalls++
	ids, ok := f.series[seriesID]
	if !ok {
		return nil, errors.New("series not found")
	}
	return ids, nil
}

func (f *fakeTarget) MarkWatched(_ context.Context, _ string, itemID string) error {
	f.marked = append(f.marked, itemID)
	if err := f.markErr[itemID]; err != nil {
		return err
	}
	return nil
}

type fakeSource struct {
	movies   []collector.SourceItem
	shows    []collector.SourceItem
	episodes []collector.SourceItem
}

func (f *fakeSource) WatchedMovies(context.Context, string) ([]collector.SourceItem, error) {
	return f.movies, nil
}

func (f *fakeSource) WatchedShows(context.Context, string) ([]collector.SourceItem, error) {
	return f.shows, nil
}

func (f *fakeSource) WatchedEpisodes(context.Context, string) ([]collector.SourceItem, error) {
	return f.episodes, nil
}
