package matcher

import "watchmigrate/internal/catalog"

// Status classifies the outcome of matching one watched item.
type Status int

const (
	StatusNoMatch Status = iota
	StatusMatched
	StatusAlreadyWatched
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusAlreadyWatched:
		return "already_watched"
	default:
		return "no_match"
	}
}

// Malformed is a target candidate that could not be evaluated.
type Malformed struct {
	Record catalog.LibraryRecord
	Reason string
}

// Result is the terminal match outcome for one watched item.
//
// Record is set for Matched and AlreadyWatched. Malformed lists every
// candidate skipped during the scan, whatever the Status, so reports can
// surface broken target records without hiding an unmatched item.
type Result struct {
	Item      catalog.WatchedItem
	Status    Status
	Record    catalog.LibraryRecord
	Malformed []Malformed
}

// Matched reports whether the result should be applied.
func (r Result) Matched() bool {
	return r.Status == StatusMatched
}
