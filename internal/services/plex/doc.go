// Package plex reads watched movies, shows and episodes from a Plex Media
// Server over its XML library API. Client implements collector.Source.
//
// Library sections are resolved by case-insensitive title and cached for the
// lifetime of the client.
package plex
