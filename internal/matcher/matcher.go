package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/library"
	"watchmigrate/internal/logging"
)

const reasonMissingNumbers = "missing season or episode number"

// Matcher finds the target record for a watched item. Candidates are
// considered in library fetch order and the first qualifying one wins; no
// further ambiguity resolution is attempted.
type Matcher struct {
	index    *library.Index
	resolver SeriesResolver
	logger   *slog.Logger
}

// New builds a Matcher over index. resolver supplies series-level provider
// IDs for episode verification.
func New(index *library.Index, resolver SeriesResolver, logger *slog.Logger) *Matcher {
	return &Matcher{
		index:    index,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "matcher"),
	}
}

// Match classifies item against the library. The only error returned is
// context cancellation; every other condition is expressed in the Result.
func (m *Matcher) Match(ctx context.Context, item catalog.WatchedItem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch item.Kind {
	case catalog.KindMovie:
		return m.matchMovie(item), nil
	case catalog.KindEpisode:
		return m.matchEpisode(ctx, item)
	default:
		m.logger.Debug("unsupported item kind", logging.String("kind", string(item.Kind)))
		return Result{Item: item, Status: StatusNoMatch}, nil
	}
}

func (m *Matcher) matchMovie(item catalog.WatchedItem) Result {
	candidates := m.index.MoviesByProvider(item.Provider, item.ExternalID)
	if len(candidates) == 0 {
		return Result{Item: item, Status: StatusNoMatch}
	}
	return qualified(item, candidates[0], nil)
}

func (m *Matcher) matchEpisode(ctx context.Context, item catalog.WatchedItem) (Result, error) {
	season, episode, numbered := item.EpisodeNumbers()

	var malformed []Malformed
	for _, candidate := range m.index.EpisodesBySeries(item.Title) {
		if candidate.Season == nil || candidate.Episode == nil {
			malformed = append(malformed, m.malformed(candidate, reasonMissingNumbers))
			continue
		}
		if !numbered || *candidate.Season != season || *candidate.Episode != episode {
			continue
		}

		ids, err := m.resolver.SeriesProviderIDs(ctx, candidate.SeriesID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return Result{}, err
			}
			malformed = append(malformed, m.malformed(candidate, fmt.Sprintf("series provider lookup failed: %v", err)))
			continue
		}

		composed := fmt.Sprintf("%s/%d/%d", ids[item.Provider], *candidate.Season, *candidate.Episode)
		if composed != item.ExternalID {
			continue
		}
		return qualified(item, candidate, malformed), nil
	}

	return Result{Item: item, Status: StatusNoMatch, Malformed: malformed}, nil
}

func (m *Matcher) malformed(record catalog.LibraryRecord, reason string) Malformed {
	m.logger.Debug("skipping malformed target record",
		logging.String(logging.FieldRecordID, record.ID),
		logging.String("record", record.Label()),
		logging.String("reason", reason),
	)
	return Malformed{Record: record, Reason: reason}
}

func qualified(item catalog.WatchedItem, record catalog.LibraryRecord, malformed []Malformed) Result {
	status := StatusMatched
	if record.Watched {
		status = StatusAlreadyWatched
	}
	return Result{Item: item, Status: status, Record: record, Malformed: malformed}
}
