// Package jellyfin is the target catalog client: it resolves users, pages
// through a user's movies and episodes, looks up series provider IDs and marks
// items played. Requests are paced by a token bucket and authenticated with
// the MediaBrowser authorization header.
package jellyfin
