package plex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"watchmigrate/internal/collector"
)

// Plex metadata type codes used by the section listing filter.
const (
	typeMovie   = "1"
	typeShow    = "2"
	typeEpisode = "4"
)

const displayTitleLimit = 20

type metadata struct {
	RatingKey        string `xml:"ratingKey,attr"`
	Title            string `xml:"title,attr"`
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	GUID             string `xml:"guid,attr"`
	ParentIndex      int    `xml:"parentIndex,attr"`
	Index            int    `xml:"index,attr"`
	ViewCount        int    `xml:"viewCount,attr"`
	ViewedLeafCount  int    `xml:"viewedLeafCount,attr"`
}

type listing struct {
	Videos      []metadata `xml:"Video"`
	Directories []metadata `xml:"Directory"`
}

// WatchedMovies lists movies in library with a non-zero view count.
func (c *Client) WatchedMovies(ctx context.Context, library string) ([]collector.SourceItem, error) {
	entries, err := c.list(ctx, library, typeMovie, true)
	if err != nil {
		return nil, err
	}
	var out []collector.SourceItem
	for _, m := range entries.Videos {
		if m.ViewCount <= 0 {
			continue
		}
		out = append(out, collector.SourceItem{Title: m.Title, GUID: m.GUID})
	}
	return out, nil
}

// WatchedShows lists shows in library with at least one watched episode.
func (c *Client) WatchedShows(ctx context.Context, library string) ([]collector.SourceItem, error) {
	entries, err := c.list(ctx, library, typeShow, false)
	if err != nil {
		return nil, err
	}
	var out []collector.SourceItem
	for _, s := range entries.Directories {
		if s.ViewedLeafCount <= 0 {
			continue
		}
		out = append(out, collector.SourceItem{Title: s.Title, GUID: s.GUID})
	}
	return out, nil
}

// WatchedEpisodes lists every watched episode in library. Display carries the
// episode's object representation, which embeds a truncated show title.
func (c *Client) WatchedEpisodes(ctx context.Context, library string) ([]collector.SourceItem, error) {
	entries, err := c.list(ctx, library, typeEpisode, true)
	if err != nil {
		return nil, err
	}
	var out []collector.SourceItem
	for _, e := range entries.Videos {
		if e.ViewCount <= 0 {
			continue
		}
		out = append(out, collector.SourceItem{
			Title:   e.Title,
			GUID:    e.GUID,
			Display: EpisodeDisplay(e.RatingKey, e.GrandparentTitle, e.ParentIndex, e.Index),
		})
	}
	return out, nil
}

func (c *Client) list(ctx context.Context, library, kind string, watchedOnly bool) (listing, error) {
	section, err := c.section(ctx, library)
	if err != nil {
		return listing{}, err
	}
	query := url.Values{}
	query.Set("type", kind)
	if watchedOnly {
		query.Set("unwatched", "0")
	}
	var entries listing
	if err := c.getXML(ctx, "/library/sections/"+url.PathEscape(section.Key)+"/all", query, &entries); err != nil {
		return listing{}, err
	}
	return entries, nil
}

// EpisodeDisplay renders an episode the way Plex clients print it:
// "<Episode:42:Show-Title-s01e02>", with spaces in the show title dashed and
// the title cut at 20 characters.
func EpisodeDisplay(ratingKey, show string, season, episode int) string {
	dashed := []rune(strings.ReplaceAll(strings.TrimSpace(show), " ", "-"))
	if len(dashed) > displayTitleLimit {
		dashed = dashed[:displayTitleLimit]
	}
	return fmt.Sprintf("<Episode:%s:%s-s%02de%02d>", ratingKey, string(dashed), season, episode)
}
