package main

import (
	"io"

	"watchmigrate/internal/collector"
	"watchmigrate/internal/config"
	"watchmigrate/internal/plexdb"
	"watchmigrate/internal/services/plex"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSource picks the library database when one is configured and the HTTP
// API otherwise. The returned closer must be called when the run ends.
func openSource(cfg *config.Config, insecure bool) (collector.Source, io.Closer, error) {
	if cfg.UsesPlexDatabase() {
		store, err := plexdb.Open(cfg.Plex.DatabasePath, cfg.Plex.AccountID)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
	client, err := plex.NewFromConfig(cfg, insecure)
	if err != nil {
		return nil, nil, err
	}
	return client, nopCloser{}, nil
}
