package plexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"watchmigrate/internal/collector"
	"watchmigrate/internal/services"
	"watchmigrate/internal/services/plex"
)

// Plex metadata_type values.
const (
	metadataMovie   = 1
	metadataShow    = 2
	metadataSeason  = 3
	metadataEpisode = 4
)

// DefaultAccountID is the server owner's account in a Plex library database.
const DefaultAccountID = 1

// Store reads watched state straight from a Plex library database
// (com.plexapp.plugins.library.db). The file is opened read-only; Plex can
// keep running while it is read.
type Store struct {
	db        *sql.DB
	path      string
	accountID int
}

// Open connects to the library database at path. accountID selects whose
// watch history is read; non-positive values fall back to DefaultAccountID.
func Open(path string, accountID int) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "plexdb", "open", "database path is empty", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plexdb", "open", "stat database", err)
	}
	if accountID <= 0 {
		accountID = DefaultAccountID
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "plexdb", "open", "resolve database path", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrConfiguration, "plexdb", "open", "connect", err)
	}
	return &Store{db: db, path: path, accountID: accountID}, nil
}

// readOnlyDSN builds a file: URI so '?' and '#' in the path are escaped
// rather than read as the query or fragment.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	uri := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "mode=ro&_pragma=busy_timeout(5000)",
	}
	return uri.String(), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file being read.
func (s *Store) Path() string {
	return s.path
}

// Section is a library section row.
type Section struct {
	ID   int64
	Name string
	Type int
}

// Sections lists library sections in id order.
func (s *Store) Sections(ctx context.Context) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, section_type FROM library_sections ORDER BY id`)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "plexdb", "list sections", "query", err)
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.Type); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		out = append(out, sec)
	}
	return out, rows.Err()
}

const watchedMoviesQuery = `
SELECT mi.title, mi.guid
FROM metadata_items mi
JOIN metadata_item_settings st ON st.guid = mi.guid AND st.account_id = ?
WHERE mi.library_section_id = ? AND mi.metadata_type = ? AND st.view_count > 0
ORDER BY mi.id`

const watchedShowsQuery = `
SELECT show.id, show.title, show.guid
FROM metadata_items ep
JOIN metadata_items season ON season.id = ep.parent_id AND season.metadata_type = ?
JOIN metadata_items show ON show.id = season.parent_id AND show.metadata_type = ?
JOIN metadata_item_settings st ON st.guid = ep.guid AND st.account_id = ?
WHERE ep.library_section_id = ? AND ep.metadata_type = ? AND st.view_count > 0
GROUP BY show.id
ORDER BY show.id`

const watchedEpisodesQuery = `
SELECT ep.id, ep.title, ep.guid, show.title, season."index", ep."index"
FROM metadata_items ep
JOIN metadata_items season ON season.id = ep.parent_id AND season.metadata_type = ?
JOIN metadata_items show ON show.id = season.parent_id AND show.metadata_type = ?
JOIN metadata_item_settings st ON st.guid = ep.guid AND st.account_id = ?
WHERE ep.library_section_id = ? AND ep.metadata_type = ? AND st.view_count > 0
ORDER BY ep.id`

// WatchedMovies lists movies in library with a non-zero view count.
func (s *Store) WatchedMovies(ctx context.Context, library string) ([]collector.SourceItem, error) {
	sectionID, err := s.sectionID(ctx, library)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, watchedMoviesQuery, s.accountID, sectionID, metadataMovie)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "plexdb", "watched movies", "query", err)
	}
	defer rows.Close()

	var out []collector.SourceItem
	for rows.Next() {
		var item collector.SourceItem
		if err := rows.Scan(&item.Title, &item.GUID); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// WatchedShows lists shows in library with at least one watched episode.
func (s *Store) WatchedShows(ctx context.Context, library string) ([]collector.SourceItem, error) {
	sectionID, err := s.sectionID(ctx, library)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, watchedShowsQuery,
		metadataSeason, metadataShow, s.accountID, sectionID, metadataEpisode)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "plexdb", "watched shows", "query", err)
	}
	defer rows.Close()

	var out []collector.SourceItem
	for rows.Next() {
		var (
			id   int64
			item collector.SourceItem
		)
		if err := rows.Scan(&id, &item.Title, &item.GUID); err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// WatchedEpisodes lists watched episodes in library with the same display
// string the HTTP source produces.
func (s *Store) WatchedEpisodes(ctx context.Context, library string) ([]collector.SourceItem, error) {
	sectionID, err := s.sectionID(ctx, library)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, watchedEpisodesQuery,
		metadataSeason, metadataShow, s.accountID, sectionID, metadataEpisode)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "plexdb", "watched episodes", "query", err)
	}
	defer rows.Close()

	var out []collector.SourceItem
	for rows.Next() {
		var (
			id              int64
			show            string
			season, episode sql.NullInt64
			item            collector.SourceItem
		)
		if err := rows.Scan(&id, &item.Title, &item.GUID, &show, &season, &episode); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		item.Display = plex.EpisodeDisplay(fmt.Sprint(id), show, int(season.Int64), int(episode.Int64))
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) sectionID(ctx context.Context, library string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM library_sections WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		strings.TrimSpace(library)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, services.Wrap(services.ErrNotFound, "plexdb", "resolve section", fmt.Sprintf("library %q not found", library), nil)
	}
	if err != nil {
		return 0, services.Wrap(services.ErrExternalService, "plexdb", "resolve section", "query", err)
	}
	return id, nil
}
