package logging

import (
	"context"
	"log/slog"

	"watchmigrate/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for the migration run identifier.
	FieldRunID = "run_id"
	// FieldItemIndex is the 1-based position of a watched item within the run.
	FieldItemIndex = "item_index"
	// FieldItemCount is the total number of watched items in the run.
	FieldItemCount = "item_count"
	// FieldProvider is the metadata provider name (Imdb, Tvdb, AniDB).
	FieldProvider = "provider"
	// FieldExternalID is the provider-scoped identifier of a watched item.
	FieldExternalID = "external_id"
	// FieldOutcome is the per-item migration outcome.
	FieldOutcome = "outcome"
	// FieldRecordID is the target catalog item identifier.
	FieldRecordID = "record_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 1)
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
