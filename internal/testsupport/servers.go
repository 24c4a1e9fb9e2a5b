package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// PlexLibrary is the fixture served by NewPlexServer: section title to the raw
// XML bodies returned for each listing type ("1", "2", "4").
type PlexLibrary map[string]map[string]string

// NewPlexServer starts a minimal Plex Media Server stand-in.
func NewPlexServer(t testing.TB, library PlexLibrary) *httptest.Server {
	t.Helper()

	keys := make(map[string]string, len(library))
	var dirs strings.Builder
	i := 0
	for title := range library {
		i++
		key := fmt.Sprint(i)
		keys[key] = title
		fmt.Fprintf(&dirs, `<Directory key="%s" title="%s" type="show"/>`, key, title)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		if r.URL.Path == "/library/sections" {
			fmt.Fprintf(w, "<MediaContainer>%s</MediaContainer>", dirs.String())
			return
		}
		for key, title := range keys {
			if r.URL.Path == "/library/sections/"+key+"/all" {
				body, ok := library[title][r.URL.Query().Get("type")]
				if !ok {
					body = "<MediaContainer/>"
				}
				_, _ = w.Write([]byte(body))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// JellyfinServer is a minimal Jellyfin stand-in that records mark-watched calls.
type JellyfinServer struct {
	*httptest.Server

	mu     sync.Mutex
	marked []string
}

// Marked returns the item IDs marked played so far.
func (s *JellyfinServer) Marked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.marked...)
}

// NewJellyfinServer serves one user named user with the given items (raw
// Jellyfin item objects) and series provider IDs keyed by series ID.
func NewJellyfinServer(t testing.TB, user string, items []map[string]any, series map[string]map[string]string) *JellyfinServer {
	t.Helper()

	js := &JellyfinServer{}
	userPrefix := "/Users/u1/"
	js.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/Users":
			_ = json.NewEncoder(w).Encode([]map[string]string{{"Id": "u1", "Name": user}})
		case r.URL.Path == userPrefix+"Items":
			_ = json.NewEncoder(w).Encode(map[string]any{"Items": items, "TotalRecordCount": len(items)})
		case strings.HasPrefix(r.URL.Path, userPrefix+"Items/"):
			ids, ok := series[strings.TrimPrefix(r.URL.Path, userPrefix+"Items/")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ProviderIds": ids})
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, userPrefix+"PlayedItems/"):
			js.mu.Lock()
			js.marked = append(js.marked, strings.TrimPrefix(r.URL.Path, userPrefix+"PlayedItems/"))
			js.mu.Unlock()
			_, _ = w.Write([]byte(`{"Played":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(js.Server.Close)
	return js
}
