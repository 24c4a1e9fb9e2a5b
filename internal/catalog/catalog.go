package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes movies from episodes on both sides of a migration.
type Kind string

const (
	KindMovie   Kind = "Movie"
	KindEpisode Kind = "Episode"
)

// WatchedItem is one watched movie or episode read from the source catalog,
// expressed in target-catalog provider vocabulary.
//
// ExternalID is the bare provider ID for movies and the compound
// "<seriesExternalId>/<season>/<episode>" path for episodes. Title is the movie
// title or, for episodes, the owning show's title.
type WatchedItem struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Kind       Kind   `json:"kind"`
}

// EpisodeNumbers returns the season and episode encoded in the trailing two
// segments of an episode ExternalID.
func (w WatchedItem) EpisodeNumbers() (season, episode int, ok bool) {
	parts := strings.Split(w.ExternalID, "/")
	if len(parts) < 3 {
		return 0, 0, false
	}
	season, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, 0, false
	}
	return season, episode, true
}

// Label renders a human-readable name: "Show - S01E02" for episodes whose
// numbers parse, the bare title otherwise.
func (w WatchedItem) Label() string {
	if w.Kind == KindEpisode {
		if season, episode, ok := w.EpisodeNumbers(); ok {
			return fmt.Sprintf("%s - %s", w.Title, EpisodeCode(season, episode))
		}
	}
	return w.Title
}

// LibraryRecord is one target-catalog item eligible to be marked watched.
// Season and Episode are nil when the target did not report them.
type LibraryRecord struct {
	ID          string            `json:"id"`
	Type        Kind              `json:"type"`
	Name        string            `json:"name"`
	SeriesName  string            `json:"series_name,omitempty"`
	SeriesID    string            `json:"series_id,omitempty"`
	ProviderIDs map[string]string `json:"provider_ids,omitempty"`
	Season      *int              `json:"season,omitempty"`
	Episode     *int              `json:"episode,omitempty"`
	Watched     bool              `json:"watched"`
}

// Label renders the record for reports and log lines.
func (r LibraryRecord) Label() string {
	if r.Type != KindEpisode {
		return r.Name
	}
	series := strings.TrimSpace(r.SeriesName)
	if series == "" {
		series = r.Name
	}
	if r.Season == nil || r.Episode == nil {
		return fmt.Sprintf("%s - %s", series, r.Name)
	}
	return fmt.Sprintf("%s - %s", series, EpisodeCode(*r.Season, *r.Episode))
}

// EpisodeCode formats season/episode numbers as S01E02.
func EpisodeCode(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

// IntPtr is a convenience for building records with optional numbers.
func IntPtr(v int) *int {
	return &v
}
