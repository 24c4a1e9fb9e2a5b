// Package report folds per-item migration outcomes into the immutable run
// summary printed at the end of a migration.
package report
