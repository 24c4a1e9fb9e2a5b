// Package preflight provides readiness checks for the directories and
// catalogs a migration depends on.
//
// The CLI "config validate --check" command runs RunAll and prints one status
// line per check. Catalog checks go through the same clients a migration
// uses, so a passing preflight means the run can at least list libraries and
// resolve the Jellyfin user.
package preflight
