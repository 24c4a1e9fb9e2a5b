// Package library indexes the target catalog snapshot.
//
// The target API cannot filter by provider ID, so the whole user library is
// fetched once and wrapped in an Index. Secondary indexes keyed by series name
// and by movie provider ID keep per-item lookups cheap; they preserve the
// original fetch order so results are identical to a linear scan.
package library
