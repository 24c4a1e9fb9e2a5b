package migrate

import (
	"context"
	"errors"
	"fmt"

	"watchmigrate/internal/catalog"
)

// Applier marks matched records watched on the target. It makes exactly one
// call per Apply and never retries.
type Applier struct {
	target Target
	userID string
	dryRun bool
}

// NewApplier binds an applier to a resolved target user.
func NewApplier(target Target, userID string, dryRun bool) *Applier {
	return &Applier{target: target, userID: userID, dryRun: dryRun}
}

// DryRun reports whether Apply skips the target call.
func (a *Applier) DryRun() bool {
	return a != nil && a.dryRun
}

// Apply marks record watched and returns a copy with Watched set. Records
// already watched are returned untouched without contacting the target.
func (a *Applier) Apply(ctx context.Context, record catalog.LibraryRecord) (catalog.LibraryRecord, error) {
	if a == nil || a.target == nil {
		return record, errors.New("applier: target not configured")
	}
	if record.Watched {
		return record, nil
	}
	if record.ID == "" {
		return record, errors.New("applier: record has no id")
	}
	if !a.dryRun {
		if err := a.target.MarkWatched(ctx, a.userID, record.ID); err != nil {
			return record, fmt.Errorf("mark %s watched: %w", record.ID, err)
		}
	}
	record.Watched = true
	return record, nil
}
