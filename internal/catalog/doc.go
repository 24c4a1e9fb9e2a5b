// Package catalog holds the value types shared by every stage of a watched
// state migration: the normalized WatchedItem read from the source catalog and
// the LibraryRecord fetched from the target catalog.
//
// Both types are plain values. Nothing in this package performs I/O.
package catalog
