// Package migrate runs a watched-state migration.
//
// Engine fetches the target library once, collects watched items from the
// source, and processes them sequentially in collection order: each item is
// matched, applied through Applier when it matched an unwatched record, and
// recorded as a report.Outcome. The folded report.Report is returned at the
// end, or early with ErrUnmatched when fail-fast is set.
package migrate
