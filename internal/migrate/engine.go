package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"watchmigrate/internal/collector"
	"watchmigrate/internal/library"
	"watchmigrate/internal/logging"
	"watchmigrate/internal/matcher"
	"watchmigrate/internal/report"
	"watchmigrate/internal/textutil"
)

// ErrUnmatched aborts a fail-fast run on the first item without a match.
var ErrUnmatched = errors.New("watched item has no match in target library")

// DefaultSeriesCacheSize bounds the series provider cache when Options leaves
// it unset.
const DefaultSeriesCacheSize = 1024

// Options controls a single migration run.
type Options struct {
	User            string
	Libraries       collector.Libraries
	Verbose         bool
	FailFast        bool
	DryRun          bool
	TitleKeyLength  int
	SeriesCacheSize int
}

// EngineOption configures optional Engine behavior.
type EngineOption func(*Engine)

// WithClock overrides the clock used to measure elapsed time.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine drives collection, matching and application for one run.
type Engine struct {
	source collector.Source
	target Target
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine wires a source and target into an Engine.
func NewEngine(source collector.Source, target Target, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		target: target,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run migrates watched state and returns the folded report. Under fail-fast
// the first unmatched item stops the run and the partial report is returned
// alongside ErrUnmatched. Cancellation likewise returns the partial report.
func (e *Engine) Run(ctx context.Context, opts Options) (report.Report, error) {
	if e == nil || e.source == nil || e.target == nil {
		return report.Report{}, errors.New("engine: source and target are required")
	}
	start := e.now()
	logger := logging.NewComponentLogger(logging.WithContext(ctx, e.logger), "migrate")

	userID, err := e.target.ResolveUser(ctx, opts.User)
	if err != nil {
		return report.Report{}, fmt.Errorf("resolve target user %q: %w", opts.User, err)
	}
	records, err := e.target.ListAllItems(ctx, userID)
	if err != nil {
		return report.Report{}, fmt.Errorf("fetch target library: %w", err)
	}
	index := library.NewIndex(records)
	movies, episodes := index.Counts()
	logger.Info("target library loaded",
		logging.Int("movies", movies),
		logging.Int("episodes", episodes),
	)

	keyer := textutil.NewTitleKeyer(opts.TitleKeyLength)
	items, dropped, err := collector.New(e.source, keyer, e.logger).Collect(ctx, opts.Libraries)
	if err != nil {
		return report.Report{}, fmt.Errorf("collect watched items: %w", err)
	}

	cacheSize := opts.SeriesCacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultSeriesCacheSize
	}
	resolver, err := matcher.NewCachedSeriesResolver(matcher.SeriesResolverFunc(
		func(ctx context.Context, seriesID string) (map[string]string, error) {
			return e.target.SeriesProviderIDs(ctx, userID, seriesID)
		}), cacheSize)
	if err != nil {
		return report.Report{}, err
	}
	match := matcher.New(index, resolver, e.logger)
	applier := NewApplier(e.target, userID, opts.DryRun)

	run := &runState{
		logger:    logger,
		verbose:   opts.Verbose,
		total:     len(items),
		malformed: make(map[string]struct{}),
	}
	outcomes := make([]report.Outcome, 0, len(items))
	finish := func() report.Report {
		return report.Fold(outcomes, e.now().Sub(start)).WithDropped(dropped)
	}

	for i, item := range items {
		result, err := match.Match(ctx, item)
		if err != nil {
			return finish(), err
		}
		outcome := e.resolve(ctx, applier, result)
		outcomes = append(outcomes, outcome)
		run.record(i, outcome)

		if opts.FailFast && outcome.Kind == report.KindNoMatch {
			logger.Error("aborting run on unmatched item",
				logging.String("item", item.Label()),
				logging.Alert("fail_fast"),
			)
			return finish(), fmt.Errorf("%w: %s", ErrUnmatched, item.Label())
		}
	}

	rep := finish()
	logger.Info("migration complete", logging.String("summary", rep.Summary()))
	return rep, nil
}

func (e *Engine) resolve(ctx context.Context, applier *Applier, result matcher.Result) report.Outcome {
	outcome := report.Outcome{
		Item:      result.Item,
		Record:    result.Record,
		Malformed: malformedEntries(result.Malformed),
	}
	switch result.Status {
	case matcher.StatusAlreadyWatched:
		outcome.Kind = report.KindAlreadyWatched
	case matcher.StatusMatched:
		updated, err := applier.Apply(ctx, result.Record)
		if err != nil {
			outcome.Kind = report.KindFailed
			outcome.Reason = err.Error()
			return outcome
		}
		outcome.Record = updated
		outcome.Kind = report.KindMarked
		if applier.DryRun() {
			outcome.Kind = report.KindWouldMark
		}
	default:
		outcome.Kind = report.KindNoMatch
	}
	return outcome
}

func malformedEntries(in []matcher.Malformed) []report.MalformedRecord {
	if len(in) == 0 {
		return nil
	}
	out := make([]report.MalformedRecord, len(in))
	for i, m := range in {
		out[i] = report.MalformedRecord{RecordID: m.Record.ID, Label: m.Record.Label(), Reason: m.Reason}
	}
	return out
}

// runState emits the per-item log lines for a run. Malformed target records
// are warned about once per record.
type runState struct {
	logger    *slog.Logger
	verbose   bool
	total     int
	malformed map[string]struct{}
}

func (s *runState) record(i int, outcome report.Outcome) {
	for _, m := range outcome.Malformed {
		if _, ok := s.malformed[m.RecordID]; ok {
			continue
		}
		s.malformed[m.RecordID] = struct{}{}
		s.logger.Warn("malformed target record",
			logging.String(logging.FieldRecordID, m.RecordID),
			logging.String("record", m.Label),
			logging.String("reason", m.Reason),
		)
	}

	attrs := []any{
		logging.Int(logging.FieldItemIndex, i+1),
		logging.Int(logging.FieldItemCount, s.total),
		logging.String(logging.FieldProvider, outcome.Item.Provider),
		logging.String(logging.FieldExternalID, outcome.Item.ExternalID),
		logging.String(logging.FieldOutcome, string(outcome.Kind)),
	}
	if outcome.Record.ID != "" {
		attrs = append(attrs, logging.String(logging.FieldRecordID, outcome.Record.ID))
	}
	label := outcome.Item.Label()

	switch {
	case outcome.Kind == report.KindFailed:
		s.logger.Warn("failed to mark "+label+" watched", append(attrs, logging.String("reason", outcome.Reason))...)
	case s.verbose:
		s.logger.Info(describe(outcome.Kind, label), attrs...)
	default:
		s.logger.Debug(describe(outcome.Kind, label), attrs...)
	}
}

func describe(kind report.Kind, label string) string {
	switch kind {
	case report.KindMarked:
		return "marked " + label + " watched"
	case report.KindWouldMark:
		return "would mark " + label + " watched"
	case report.KindAlreadyWatched:
		return label + " already watched"
	default:
		return "no match for " + label
	}
}
