// Package matcher pairs watched items from the source catalog with records in
// the target library snapshot.
//
// Movies qualify on an exact provider ID. Episodes are narrowed by exact
// series name, then by season and episode number, and finally verified by
// composing "<series provider id>/<season>/<episode>" from a series-level
// lookup and comparing it with the item's external ID. Candidates that lack
// numbers or whose series lookup fails are recorded as malformed and skipped
// rather than aborting the item. Series lookups go through an LRU-backed
// CachedSeriesResolver.
package matcher
