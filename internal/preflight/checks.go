package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"watchmigrate/internal/config"
	"watchmigrate/internal/plexdb"
	"watchmigrate/internal/services"
	"watchmigrate/internal/services/jellyfin"
	"watchmigrate/internal/services/plex"
)

const checkTimeout = 15 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPlexServer verifies the Plex token and that every configured library
// exists on the server.
func CheckPlexServer(ctx context.Context, cfg *config.Config, insecure bool) Result {
	const name = "Plex server"

	client, err := plex.NewFromConfig(cfg, insecure)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	sections, err := client.Sections(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	titles := make([]string, len(sections))
	for i, s := range sections {
		titles[i] = s.Title
	}
	if missing := missingLibraries(cfg.Libraries, titles); len(missing) > 0 {
		return Result{Name: name, Detail: "missing libraries: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable, %d sections", len(sections))}
}

// CheckPlexDatabase verifies the library database opens read-only and holds
// every configured library.
func CheckPlexDatabase(ctx context.Context, cfg *config.Config) Result {
	const name = "Plex database"

	store, err := plexdb.Open(cfg.Plex.DatabasePath, cfg.Plex.AccountID)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer store.Close()

	sections, err := store.Sections(ctx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	titles := make([]string, len(sections))
	for i, s := range sections {
		titles[i] = s.Name
	}
	if missing := missingLibraries(cfg.Libraries, titles); len(missing) > 0 {
		return Result{Name: name, Detail: "missing libraries: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d sections)", store.Path(), len(sections))}
}

// CheckJellyfin verifies Jellyfin connectivity, the API key and that the
// configured user exists.
func CheckJellyfin(ctx context.Context, cfg *config.Config, insecure bool) Result {
	const name = "Jellyfin"

	client, err := jellyfin.NewFromConfig(cfg, insecure)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := client.ResolveUser(checkCtx, cfg.Jellyfin.User); err != nil {
		if errors.Is(err, services.ErrConfiguration) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable, user %q found", cfg.Jellyfin.User)}
}

func missingLibraries(libs config.Libraries, titles []string) []string {
	present := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		present[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	var missing []string
	for _, name := range []string{libs.Movies, libs.Shows, libs.Anime} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := present[strings.ToLower(name)]; !ok {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	return missing
}

// summarizeError produces a human-readable summary for check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (server unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (server unreachable)"
	}
	return err.Error()
}
