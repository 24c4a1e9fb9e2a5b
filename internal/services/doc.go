// Package services defines shared utilities consumed by the catalog
// integrations and the migration engine.
//
// Key responsibilities:
//   - Context helpers that stamp a run identifier for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can tell
//     configuration mistakes from remote failures.
//   - The HTTP client factory used by the Plex and Jellyfin clients, including
//     the opt-in TLS verification bypass.
package services
