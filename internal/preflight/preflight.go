package preflight

import (
	"context"

	"watchmigrate/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for cfg. insecure disables TLS
// verification for the catalog checks, matching the migrate flag.
func RunAll(ctx context.Context, cfg *config.Config, insecure bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.UsesPlexDatabase() {
		results = append(results, CheckPlexDatabase(ctx, cfg))
	} else {
		results = append(results, CheckPlexServer(ctx, cfg, insecure))
	}
	results = append(results, CheckJellyfin(ctx, cfg, insecure))

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
