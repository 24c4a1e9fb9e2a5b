package matcher_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/library"
	"watchmigrate/internal/logging"
	"watchmigrate/internal/matcher"
)

type stubResolver struct {
	ids   map[string]map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		ids:   map[string]map[string]string{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (s *stubResolver) SeriesProviderIDs(_ context.Context, seriesID string) (map[string]string, error) {
	s.calls[seriesID]++
	if err := s.errs[seriesID]; err != nil {
		return nil, err
	}
	return s.ids[seriesID], nil
}

func episode(id, series, seriesID string, season, ep int, watched bool) catalog.LibraryRecord {
	return catalog.LibraryRecord{
		ID:         id,
		Type:       catalog.KindEpisode,
		Name:       "Episode",
		SeriesName: series,
		SeriesID:   seriesID,
		Season:     catalog.IntPtr(season),
		Episode:    catalog.IntPtr(ep),
		Watched:    watched,
	}
}

func TestMatchMovieByProviderID(t *testing.T) {
	idx := library.NewIndex([]catalog.LibraryRecord{
		{ID: "m1", Type: catalog.KindMovie, Name: "Heat", ProviderIDs: map[string]string{"Imdb": "tt0113277"}},
		{ID: "m2", Type: catalog.KindMovie, Name: "Ronin", ProviderIDs: map[string]string{"Imdb": "tt0122690"}, Watched: true},
	})
	m := matcher.New(idx, newStubResolver(), logging.NewNop())

	res, err := m.Match(context.Background(), catalog.WatchedItem{Provider: "Imdb", ExternalID: "tt0113277", Title: "Heat", Kind: catalog.KindMovie})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Status != matcher.StatusMatched || res.Record.ID != "m1" || !res.Matched() {
		t.Fatalf("unexpected result %+v", res)
	}

	res, _ = m.Match(context.Background(), catalog.WatchedItem{Provider: "Imdb", ExternalID: "tt0122690", Title: "Ronin", Kind: catalog.KindMovie})
	if res.Status != matcher.StatusAlreadyWatched || res.Record.ID != "m2" {
		t.Fatalf("expected already watched, got %+v", res)
	}

	res, _ = m.Match(context.Background(), catalog.WatchedItem{Provider: "Tvdb", ExternalID: "tt0113277", Title: "Heat", Kind: catalog.KindMovie})
	if res.Status != matcher.StatusNoMatch {
		t.Fatalf("provider mismatch should not match, got %+v", res)
	}
}

func TestMatchMovieFirstCandidateWins(t *testing.T) {
	idx := library.NewIndex([]catalog.LibraryRecord{
		{ID: "first", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}},
		{ID: "second", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}},
	})
	m := matcher.New(idx, newStubResolver(), nil)
	res, _ := m.Match(context.Background(), catalog.WatchedItem{Provider: "Imdb", ExternalID: "tt1", Kind: catalog.KindMovie})
	if res.Record.ID != "first" {
		t.Fatalf("expected first candidate, got %q", res.Record.ID)
	}
}

func TestMatchEpisodeComposesSeriesPath(t *testing.T) {
	idx := library.NewIndex([]catalog.LibraryRecord{
		episode("e1", "Show A", "s1", 1, 1, false),
		episode("e2", "Show A", "s1", 1, 2, false),
	})
	resolver := newStubResolver()
	resolver.ids["s1"] = map[string]string{"Tvdb": "111"}
	m := matcher.New(idx, resolver, nil)

	res, err := m.Match(context.Background(), catalog.WatchedItem{Provider: "Tvdb", ExternalID: "111/1/2", Title: "Show A", Kind: catalog.KindEpisode})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Status != matcher.StatusMatched || res.Record.ID != "e2" {
		t.Fatalf("unexpected result %+v", res)
	}
	if resolver.calls["s1"] != 1 {
		t.Fatalf("expected one series lookup for the qualifying pair, got %d", resolver.calls["s1"])
	}
}

func TestMatchEpisodeNoMatch(t *testing.T) {
	idx := library.NewIndex([]catalog.LibraryRecord{episode("e1", "Show A", "s1", 1, 1, false)})
	resolver := newStubResolver()
	resolver.ids["s1"] = map[string]string{"Tvdb": "999"}
	m := matcher.New(idx, resolver, nil)

	cases := []catalog.WatchedItem{
		{Provider: "Tvdb", ExternalID: "111/1/1", Title: "Show A", Kind: catalog.KindEpisode},
		{Provider: "Tvdb", ExternalID: "999/1/1", Title: "Show a", Kind: catalog.KindEpisode},
		{Provider: "Tvdb", ExternalID: "999/2/1", Title: "Show A", Kind: catalog.KindEpisode},
		{Provider: "AniDB", ExternalID: "999/1/1", Title: "Show A", Kind: catalog.KindEpisode},
	}
	for _, item := range cases {
		res, err := m.Match(context.Background(), item)
		if err != nil {
			t.Fatalf("Match(%+v): %v", item, err)
		}
		if res.Status != matcher.StatusNoMatch {
			t.Fatalf("expected no match for %+v, got %+v", item, res)
		}
	}
}

func TestMatchEpisodeSkipsMalformedCandidates(t *testing.T) {
	broken := episode("e0", "Show A", "s1", 1, 1, false)
	broken.Episode = nil
	idx := library.NewIndex([]catalog.LibraryRecord{
		broken,
		episode("e1", "Show A", "s1", 1, 1, true),
	})
	resolver := newStubResolver()
	resolver.ids["s1"] = map[string]string{"Tvdb": "111"}
	m := matcher.New(idx, resolver, nil)

	res, err := m.Match(context.Background(), catalog.WatchedItem{Provider: "Tvdb", ExternalID: "111/1/1", Title: "Show A", Kind: catalog.KindEpisode})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Status != matcher.StatusAlreadyWatched || res.Record.ID != "e1" {
		t.Fatalf("expected later candidate to qualify, got %+v", res)
	}
	if len(res.Malformed) != 1 || res.Malformed[0].Record.ID != "e0" {
		t.Fatalf("expected malformed candidate to be reported, got %+v", res.Malformed)
	}
}

func TestMatchEpisodeMalformedCandidatesStillNoMatch(t *testing.T) {
	broken := episode("e0", "Show A", "s1", 1, 1, false)
	broken.Season = nil
	idx := library.NewIndex([]catalog.LibraryRecord{
		broken,
		episode("e1", "Show A", "s2", 1, 1, false),
	})
	resolver := newStubResolver()
	resolver.errs["s2"] = errors.New("series not found")
	m := matcher.New(idx, resolver, nil)

	res, err := m.Match(context.Background(), catalog.WatchedItem{Provider: "Tvdb", ExternalID: "111/1/1", Title: "Show A", Kind: catalog.KindEpisode})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Status != matcher.StatusNoMatch || res.Record.ID != "" {
		t.Fatalf("expected no match, got %+v", res)
	}
	if len(res.Malformed) != 2 || res.Malformed[0].Record.ID != "e0" || res.Malformed[1].Record.ID != "e1" {
		t.Fatalf("expected both candidates recorded, got %+v", res.Malformed)
	}
	if !strings.HasPrefix(res.Malformed[1].Reason, "series provider lookup failed") {
		t.Fatalf("unexpected lookup reason %q", res.Malformed[1].Reason)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	idx := library.NewIndex([]catalog.LibraryRecord{
		episode("e1", "Show A", "s1", 1, 1, false),
		episode("e2", "Show A", "s1", 1, 1, false),
	})
	resolver := newStubResolver()
	resolver.ids["s1"] = map[string]string{"Tvdb": "111"}
	m := matcher.New(idx, resolver, nil)
	item := catalog.WatchedItem{Provider: "Tvdb", ExternalID: "111/1/1", Title: "Show A", Kind: catalog.KindEpisode}

	first, _ := m.Match(context.Background(), item)
	second, _ := m.Match(context.Background(), item)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if first.Record.ID != "e1" {
		t.Fatalf("expected first candidate in fetch order, got %q", first.Record.ID)
	}
}

func TestMatchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := matcher.New(library.NewIndex(nil), newStubResolver(), nil)
	if _, err := m.Match(ctx, catalog.WatchedItem{Kind: catalog.KindMovie}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
