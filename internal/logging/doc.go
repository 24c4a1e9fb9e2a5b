// Package logging assembles the structured slog loggers used by watchmigrate.
//
// It owns the console and JSON handlers, level parsing and output routing
// (stderr plus an optional log file), and the standardized field keys used for
// per-item migration logs. WithContext stamps the run identifier carried in a
// context onto a logger. NewNop returns a discarding logger for tests and
// optional wiring.
package logging
