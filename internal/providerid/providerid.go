package providerid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedIdentifier marks source identifiers that do not have the
// "<agent>://<id>?<query>" shape.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// Provider names in target-catalog vocabulary.
const (
	Imdb  = "Imdb"
	Tvdb  = "Tvdb"
	AniDB = "AniDB"
)

// agentNames maps source agent names to target provider names. Agents not
// listed here pass through unchanged.
var agentNames = map[string]string{
	"thetvdb": Tvdb,
	"imdb":    Imdb,
	"hama":    AniDB,
}

// junkPrefixes are stripped from raw IDs; the anime agent prefixes IDs with
// the database they came from.
var junkPrefixes = []string{"anidb-", "tvdb-"}

// ID is a normalized (provider, externalId) pair.
type ID struct {
	Provider   string
	ExternalID string
}

func (id ID) String() string {
	return id.Provider + ":" + id.ExternalID
}

// Parse normalizes a source identifier such as
// "com.plexapp.agents.thetvdb://248741/1/1?lang=en" into {Tvdb 248741/1/1}.
func Parse(guid string) (ID, error) {
	trimmed := strings.TrimSpace(guid)
	scheme, rest, ok := strings.Cut(trimmed, "://")
	if !ok {
		return ID{}, fmt.Errorf("%w: %q has no scheme separator", ErrMalformedIdentifier, guid)
	}
	rawID, _, ok := strings.Cut(rest, "?")
	if !ok {
		return ID{}, fmt.Errorf("%w: %q has no query separator", ErrMalformedIdentifier, guid)
	}

	agent := scheme
	if idx := strings.LastIndex(scheme, "."); idx >= 0 {
		agent = scheme[idx+1:]
	}
	if agent == "" || rawID == "" {
		return ID{}, fmt.Errorf("%w: %q has an empty agent or id", ErrMalformedIdentifier, guid)
	}

	return ID{Provider: ProviderName(agent), ExternalID: stripJunk(rawID)}, nil
}

// ProviderName applies the agent rename table.
func ProviderName(agent string) string {
	if name, ok := agentNames[agent]; ok {
		return name
	}
	return agent
}

func stripJunk(rawID string) string {
	for _, prefix := range junkPrefixes {
		rawID = strings.TrimPrefix(rawID, prefix)
	}
	return rawID
}
