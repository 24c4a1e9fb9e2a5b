package migrate_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/collector"
	"watchmigrate/internal/logging"
	"watchmigrate/internal/migrate"
)

func fixedClock() func() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * time.Second)
	}
}

func libs() collector.Libraries {
	return collector.Libraries{Movies: "Movies", Shows: "TV Shows"}
}

func newEngine(src collector.Source, target migrate.Target) *migrate.Engine {
	return migrate.NewEngine(src, target, logging.NewNop(), migrate.WithClock(fixedClock()))
}

func TestRunMovieMatchIsMarked(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m1", Type: catalog.KindMovie, Name: "The Movie", ProviderIDs: map[string]string{"Imdb": "tt1068680"}},
		},
	}
	src := &fakeSource{movies: []collector.SourceItem{
		{Title: "The Movie", GUID: "com.plexapp.agents.imdb://tt1068680?lang=en"},
	}}

	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Total != 1 || rep.Marked != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if !reflect.DeepEqual(target.marked, []string{"m1"}) {
		t.Fatalf("unexpected mark calls %v", target.marked)
	}
	if rep.Elapsed != time.Second {
		t.Fatalf("expected elapsed from injected clock, got %s", rep.Elapsed)
	}
}

func TestRunNeverMarksAlreadyWatched(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m1", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}, Watched: true},
		},
	}
	src := &fakeSource{movies: []collector.SourceItem{
		{Title: "Seen", GUID: "com.plexapp.agents.imdb://tt1?lang=en"},
	}}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.AlreadyWatched != 1 || len(target.marked) != 0 {
		t.Fatalf("expected already watched without calls, report=%+v calls=%v", rep, target.marked)
	}
}

func TestRunEpisodeNoMatchIsReported(t *testing.T) {
	target := &fakeTarget{user: "alice"}
	src := &fakeSource{
		shows:    []collector.SourceItem{{Title: "Show A"}},
		episodes: []collector.SourceItem{{GUID: "com.plexapp.agents.thetvdb://100/1/1?lang=en", Display: "<Episode:1:Show-A-s01e01>"}},
	}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(rep.NoMatch, []string{"Show A - S01E01"}) {
		t.Fatalf("unexpected no-match list %v", rep.NoMatch)
	}
}

func TestRunDropsMalformedIdentifierAndContinues(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m1", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}},
		},
	}
	src := &fakeSource{movies: []collector.SourceItem{
		{Title: "Broken", GUID: "not-a-valid-guid"},
		{Title: "Good", GUID: "com.plexapp.agents.imdb://tt1?lang=en"},
	}}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Total != 1 || rep.Marked != 1 {
		t.Fatalf("expected the valid item to be processed, got %+v", rep)
	}
	if len(rep.Dropped) != 1 || rep.Dropped[0].GUID != "not-a-valid-guid" {
		t.Fatalf("expected dropped identifier in report, got %+v", rep.Dropped)
	}
}

func TestRunFailFastStopsOnFirstNoMatch(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m2", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt2"}},
		},
	}
	src := &fakeSource{movies: []collector.SourceItem{
		{Title: "Missing", GUID: "com.plexapp.agents.imdb://tt1?lang=en"},
		{Title: "Present", GUID: "com.plexapp.agents.imdb://tt2?lang=en"},
	}}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs(), FailFast: true})
	if !errors.Is(err, migrate.ErrUnmatched) {
		t.Fatalf("expected ErrUnmatched, got %v", err)
	}
	if rep.Total != 1 || len(rep.NoMatch) != 1 || rep.NoMatch[0] != "Missing" {
		t.Fatalf("expected partial report, got %+v", rep)
	}
	if len(target.marked) != 0 {
		t.Fatalf("expected run to stop before later items, got calls %v", target.marked)
	}
}

func TestRunFailFastWithMalformedSiblingRecord(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "e5", Type: catalog.KindEpisode, SeriesName: "Show A", SeriesID: "s1", Name: "Special"},
		},
		series: map[string]map[string]string{"s1": {"Tvdb": "100"}},
	}
	src := &fakeSource{
		shows:    []collector.SourceItem{{Title: "Show A"}},
		episodes: []collector.SourceItem{{GUID: "com.plexapp.agents.thetvdb://100/1/1?lang=en", Display: "<Episode:1:Show-A-s01e01>"}},
	}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs(), FailFast: true})
	if !errors.Is(err, migrate.ErrUnmatched) {
		t.Fatalf("expected ErrUnmatched, got %v", err)
	}
	if !reflect.DeepEqual(rep.NoMatch, []string{"Show A - S01E01"}) {
		t.Fatalf("expected unmatched episode in report, got %v", rep.NoMatch)
	}
	if len(rep.Malformed) != 1 || rep.Malformed[0].RecordID != "e5" {
		t.Fatalf("expected malformed sibling record listed, got %+v", rep.Malformed)
	}
}

func TestRunEpisodesWithSeriesLookupAndDuplicates(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "bad", Type: catalog.KindEpisode, SeriesName: "Show A", SeriesID: "s1", Name: "Special"},
			{ID: "e1", Type: catalog.KindEpisode, SeriesName: "Show A", SeriesID: "s1", Season: catalog.IntPtr(1), Episode: catalog.IntPtr(1)},
			{ID: "e2", Type: catalog.KindEpisode, SeriesName: "Show A", SeriesID: "s1", Season: catalog.IntPtr(1), Episode: catalog.IntPtr(2)},
		},
		series: map[string]map[string]string{"s1": {"Tvdb": "100", "AniDB": "900"}},
	}
	src := &fakeSource{
		shows: []collector.SourceItem{{Title: "Show A"}},
		episodes: []collector.SourceItem{
			{GUID: "com.plexapp.agents.thetvdb://100/1/1?lang=en", Display: "<Episode:1:Show-A-s01e01>"},
			{GUID: "com.plexapp.agents.hama://anidb-900/1/1?lang=en", Display: "<Episode:2:Show-A-s01e01>"},
			{GUID: "com.plexapp.agents.thetvdb://100/1/2?lang=en", Display: "<Episode:3:Show-A-s01e02>"},
		},
	}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Total != 3 || rep.Marked != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if !reflect.DeepEqual(target.marked, []string{"e1", "e1", "e2"}) {
		t.Fatalf("expected duplicates to resolve independently, got %v", target.marked)
	}
	if target.seriesCalls != 1 {
		t.Fatalf("expected series lookup to be cached, got %d calls", target.seriesCalls)
	}
	if len(rep.Malformed) != 1 || rep.Malformed[0].RecordID != "bad" {
		t.Fatalf("expected malformed record once, got %+v", rep.Malformed)
	}
}

func TestRunDryRunMakesNoWrites(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m1", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}},
		},
	}
	src := &fakeSource{movies: []collector.SourceItem{{Title: "A", GUID: "com.plexapp.agents.imdb://tt1?lang=en"}}}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs(), DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.WouldMark != 1 || rep.Marked != 0 || len(target.marked) != 0 {
		t.Fatalf("unexpected dry run result %+v calls=%v", rep, target.marked)
	}
}

func TestRunApplyFailureContinues(t *testing.T) {
	target := &fakeTarget{
		user: "alice",
		records: []catalog.LibraryRecord{
			{ID: "m1", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}},
			{ID: "m2", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt2"}},
		},
		markErr: map[string]error{"m1": errors.New("server error")},
	}
	src := &fakeSource{movies: []collector.SourceItem{
		{Title: "A", GUID: "com.plexapp.agents.imdb://tt1?lang=en"},
		{Title: "B", GUID: "com.plexapp.agents.imdb://tt2?lang=en"},
	}}
	rep, err := newEngine(src, target).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs(), FailFast: true})
	if err != nil {
		t.Fatalf("apply failures must not abort the run: %v", err)
	}
	if rep.Failed != 1 || rep.Marked != 1 || len(rep.Failures) != 1 || rep.Failures[0].RecordID != "m1" {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	build := func() (*fakeTarget, *fakeSource) {
		return &fakeTarget{
				user: "alice",
				records: []catalog.LibraryRecord{
					{ID: "m1", Type: catalog.KindMovie, ProviderIDs: map[string]string{"Imdb": "tt1"}, Watched: true},
				},
			}, &fakeSource{movies: []collector.SourceItem{
				{Title: "A", GUID: "com.plexapp.agents.imdb://tt1?lang=en"},
				{Title: "B", GUID: "com.plexapp.agents.imdb://tt9?lang=en"},
			}}
	}
	t1, s1 := build()
	t2, s2 := build()
	first, err1 := newEngine(s1, t1).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	second, err2 := newEngine(s2, t2).Run(context.Background(), migrate.Options{User: "alice", Libraries: libs()})
	if err1 != nil || err2 != nil {
		t.Fatalf("Run errors: %v %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical reports:\n%+v\n%+v", first, second)
	}
}

func TestRunFailsOnUnknownUser(t *testing.T) {
	target := &fakeTarget{user: "alice"}
	if _, err := newEngine(&fakeSource{}, target).Run(context.Background(), migrate.Options{User: "bob"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestRunCancelledReturnsPartialReport(t *testing.T) {
	target := &fakeTarget{user: "alice"}
	src := &fakeSource{movies: []collector.SourceItem{{Title: "A", GUID: "com.plexapp.agents.imdb://tt1?lang=en"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := newEngine(src, target).Run(ctx, migrate.Options{User: "alice", Libraries: libs()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if rep.Total != 0 {
		t.Fatalf("expected empty partial report, got %+v", rep)
	}
}
