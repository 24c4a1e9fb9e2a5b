// Package notifications delivers migration results via ntfy.
//
// The topic comes from the [notifications] section of config.toml (or
// NTFY_TOPIC). With no topic configured NewService returns a no-op, so callers
// never need to check whether notifications are enabled before sending.
package notifications
