// Package config loads, normalizes, and validates watchmigrate configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, loads an optional dotenv file, and honours environment fallbacks
// for catalog credentials. Load checks structure only; ValidateConnections
// additionally requires everything a migration run needs, after command-line
// overrides have been applied.
package config
