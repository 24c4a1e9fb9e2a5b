// Package runlock keeps two migrations from running against the same state
// directory at once. The lock file carries no data.
package runlock
