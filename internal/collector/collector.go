package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/logging"
	"watchmigrate/internal/providerid"
	"watchmigrate/internal/textutil"
)

// SourceItem is a raw watched movie, show, or episode as reported by the
// source catalog.
//
// Display is only meaningful for episodes: it is the catalog's own string
// representation of the episode, which embeds a truncated show title.
type SourceItem struct {
	Title   string
	GUID    string
	Display string
}

// Source enumerates watched content of a named source library.
type Source interface {
	WatchedMovies(ctx context.Context, library string) ([]SourceItem, error)
	WatchedShows(ctx context.Context, library string) ([]SourceItem, error)
	WatchedEpisodes(ctx context.Context, library string) ([]SourceItem, error)
}

// Libraries names the source libraries to read. An empty name skips that
// media kind.
type Libraries struct {
	Movies string
	Shows  string
	Anime  string
}

// Dropped records a source item excluded from the watched set because its
// identifier did not parse.
type Dropped struct {
	Library string `json:"library"`
	Title   string `json:"title"`
	GUID    string `json:"guid"`
	Reason  string `json:"reason"`
}

// Collector walks source libraries and flattens them into WatchedItems.
type Collector struct {
	source Source
	keyer  textutil.TitleKeyer
	logger *slog.Logger
}

// New constructs a Collector. A nil logger discards output.
func New(source Source, keyer textutil.TitleKeyer, logger *slog.Logger) *Collector {
	return &Collector{
		source: source,
		keyer:  keyer,
		logger: logging.NewComponentLogger(logger, "collector"),
	}
}

// Collect returns watched items in library order: movies, shows, then anime.
// Items with malformed identifiers are logged, reported in the dropped list,
// and skipped; source errors abort the collection.
func (c *Collector) Collect(ctx context.Context, libs Libraries) ([]catalog.WatchedItem, []Dropped, error) {
	if c == nil || c.source == nil {
		return nil, nil, errors.New("collector: source not configured")
	}

	var items []catalog.WatchedItem
	var dropped []Dropped

	if name := strings.TrimSpace(libs.Movies); name != "" {
		movies, skipped, err := c.collectMovies(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, movies...)
		dropped = append(dropped, skipped...)
	} else {
		c.logger.Debug("movie library not configured; skipping")
	}

	for _, name := range []string{libs.Shows, libs.Anime} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		episodes, skipped, err := c.collectEpisodes(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, episodes...)
		dropped = append(dropped, skipped...)
	}

	c.logger.Info("collected watched items",
		logging.Int("items", len(items)),
		logging.Int("dropped", len(dropped)),
	)
	return items, dropped, nil
}

func (c *Collector) collectMovies(ctx context.Context, library string) ([]catalog.WatchedItem, []Dropped, error) {
	c.logger.Info("fetching watched movies", logging.String("library", library))
	movies, err := c.source.WatchedMovies(ctx, library)
	if err != nil {
		return nil, nil, fmt.Errorf("list watched movies in %q: %w", library, err)
	}

	items := make([]catalog.WatchedItem, 0, len(movies))
	var dropped []Dropped
	for _, movie := range movies {
		id, err := providerid.Parse(movie.GUID)
		if err != nil {
			dropped = append(dropped, c.drop(library, movie, err))
			continue
		}
		item := catalog.WatchedItem{
			Provider:   id.Provider,
			ExternalID: id.ExternalID,
			Title:      movie.Title,
			Kind:       catalog.KindMovie,
		}
		c.logger.Debug("watched movie", itemAttrs(item)...)
		items = append(items, item)
	}
	return items, dropped, nil
}

// collectEpisodes pairs every watched show with every watched episode in the
// library whose display string contains the show's title key. The library's
// episode listing carries no show reference, hence the heuristic.
func (c *Collector) collectEpisodes(ctx context.Context, library string) ([]catalog.WatchedItem, []Dropped, error) {
	c.logger.Info("fetching watched shows", logging.String("library", library))
	shows, err := c.source.WatchedShows(ctx, library)
	if err != nil {
		return nil, nil, fmt.Errorf("list watched shows in %q: %w", library, err)
	}
	if len(shows) == 0 {
		return nil, nil, nil
	}
	episodes, err := c.source.WatchedEpisodes(ctx, library)
	if err != nil {
		return nil, nil, fmt.Errorf("list watched episodes in %q: %w", library, err)
	}

	displays := make([]string, len(episodes))
	for i, ep := range episodes {
		displays[i] = textutil.NormalizeTitle(ep.Display)
	}

	var items []catalog.WatchedItem
	var dropped []Dropped
	seenDrop := make(map[string]struct{})
	for _, show := range shows {
		key := c.keyer.Key(show.Title)
		for i, ep := range episodes {
			if !textutil.ContainsTitleKey(displays[i], key) {
				continue
			}
			id, err := providerid.Parse(ep.GUID)
			if err != nil {
				if _, ok := seenDrop[ep.GUID]; !ok {
					seenDrop[ep.GUID] = struct{}{}
					dropped = append(dropped, c.drop(library, SourceItem{Title: show.Title, GUID: ep.GUID, Display: ep.Display}, err))
				}
				continue
			}
			item := catalog.WatchedItem{
				Provider:   id.Provider,
				ExternalID: id.ExternalID,
				Title:      show.Title,
				Kind:       catalog.KindEpisode,
			}
			c.logger.Debug("watched episode", itemAttrs(item)...)
			items = append(items, item)
		}
	}
	return items, dropped, nil
}

func (c *Collector) drop(library string, item SourceItem, err error) Dropped {
	c.logger.Warn("dropping source item with malformed identifier",
		logging.String("library", library),
		logging.String("title", item.Title),
		logging.String("guid", item.GUID),
		logging.Error(err),
	)
	return Dropped{Library: library, Title: item.Title, GUID: item.GUID, Reason: err.Error()}
}

func itemAttrs(item catalog.WatchedItem) []any {
	return []any{
		logging.String(logging.FieldProvider, item.Provider),
		logging.String(logging.FieldExternalID, item.ExternalID),
		logging.String("title", item.Title),
	}
}
