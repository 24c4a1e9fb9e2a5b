package report

import (
	"fmt"
	"time"

	"watchmigrate/internal/catalog"
	"watchmigrate/internal/collector"
)

// Kind is the terminal classification of one watched item.
type Kind string

const (
	KindMarked         Kind = "marked"
	KindWouldMark      Kind = "would_mark"
	KindAlreadyWatched Kind = "already_watched"
	KindNoMatch        Kind = "no_match"
	KindFailed         Kind = "failed"
)

// MalformedRecord is a target record that could not be evaluated.
type MalformedRecord struct {
	RecordID string `json:"record_id"`
	Label    string `json:"label"`
	Reason   string `json:"reason"`
}

// Outcome is the result of processing one watched item. Malformed lists every
// target record skipped while matching the item, whatever its final Kind.
type Outcome struct {
	Item      catalog.WatchedItem
	Kind      Kind
	Record    catalog.LibraryRecord
	Reason    string
	Malformed []MalformedRecord
}

// Failure is an item whose mark-watched call failed.
type Failure struct {
	Item     string `json:"item"`
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

// Report summarizes a run. Values are built by Fold and not mutated after.
type Report struct {
	Total          int                 `json:"total"`
	Marked         int                 `json:"marked"`
	WouldMark      int                 `json:"would_mark"`
	AlreadyWatched int                 `json:"already_watched"`
	Failed         int                 `json:"failed"`
	NoMatch        []string            `json:"no_match"`
	Malformed      []MalformedRecord   `json:"malformed"`
	Failures       []Failure           `json:"failures"`
	Dropped        []collector.Dropped `json:"dropped"`
	Elapsed        time.Duration       `json:"elapsed_ns"`
}

// Fold reduces outcomes, in processing order, into a Report.
//
// Malformed records are deduplicated by record ID; the first reason seen is
// kept and list order follows first appearance.
func Fold(outcomes []Outcome, elapsed time.Duration) Report {
	rep := Report{Total: len(outcomes), Elapsed: elapsed}
	seen := make(map[string]struct{})
	addMalformed := func(entries []MalformedRecord) {
		for _, entry := range entries {
			if _, ok := seen[entry.RecordID]; ok {
				continue
			}
			seen[entry.RecordID] = struct{}{}
			rep.Malformed = append(rep.Malformed, entry)
		}
	}

	for _, outcome := range outcomes {
		addMalformed(outcome.Malformed)
		switch outcome.Kind {
		case KindMarked:
			rep.Marked++
		case KindWouldMark:
			rep.WouldMark++
		case KindAlreadyWatched:
			rep.AlreadyWatched++
		case KindNoMatch:
			rep.NoMatch = append(rep.NoMatch, outcome.Item.Label())
		case KindFailed:
			rep.Failed++
			rep.Failures = append(rep.Failures, Failure{
				Item:     outcome.Item.Label(),
				RecordID: outcome.Record.ID,
				Reason:   outcome.Reason,
			})
		}
	}
	return rep
}

// WithDropped returns a copy of r carrying the source items dropped during
// collection.
func (r Report) WithDropped(dropped []collector.Dropped) Report {
	r.Dropped = append([]collector.Dropped(nil), dropped...)
	return r
}

// Summary renders the one-line count summary used in logs.
func (r Report) Summary() string {
	return fmt.Sprintf("%d items: %d marked, %d would mark, %d already watched, %d unmatched, %d malformed, %d failed in %s",
		r.Total, r.Marked, r.WouldMark, r.AlreadyWatched, len(r.NoMatch), len(r.Malformed), r.Failed, r.Elapsed.Round(time.Millisecond))
}
