// Package plexdb is an offline collector.Source backed by a copy of, or the
// live, Plex library database. It is used when the server's HTTP API is not
// reachable, for example when migrating from a decommissioned install.
//
// Watched state comes from metadata_item_settings.view_count for a single
// account, and episode display strings are built exactly like the HTTP
// source so the show-title heuristic behaves the same on both paths.
package plexdb
