// Package providerid converts source-catalog agent identifiers into the
// provider names and external IDs the target catalog stores.
//
// Source identifiers look like "com.plexapp.agents.imdb://tt1068680?lang=en".
// The agent segment is renamed through a fixed table (thetvdb, imdb and hama
// become Tvdb, Imdb and AniDB); unknown agents are kept verbatim. Parse is pure
// and reports ErrMalformedIdentifier for anything without both "://" and "?".
package providerid
