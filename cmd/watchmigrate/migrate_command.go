package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"watchmigrate/internal/collector"
	"watchmigrate/internal/config"
	"watchmigrate/internal/logging"
	"watchmigrate/internal/migrate"
	"watchmigrate/internal/notifications"
	"watchmigrate/internal/runlock"
	"watchmigrate/internal/services"
	"watchmigrate/internal/services/jellyfin"
)

type migrateFlags struct {
	verbose  bool
	failFast bool
	dryRun   bool
	insecure bool
	json     bool
	movies   string
	shows    string
	anime    string
	plexDB   string
	user     string
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var flags migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Mark items watched in Jellyfin that are watched in Plex",
		Long: "Collects watched movies and episodes from the configured Plex libraries,\n" +
			"matches them against the Jellyfin user's library by provider IDs and\n" +
			"marks unwatched matches as played.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyMigrateFlags(cmd, cfg, flags); err != nil {
				return err
			}
			if err := cfg.ValidateConnections(); err != nil {
				return err
			}
			return runMigrate(cmd, ctx, cfg, flags.json)
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log every item as it is processed")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Stop with a non-zero exit on the first item without a match")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Match everything but do not change Jellyfin")
	cmd.Flags().BoolVar(&flags.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the run report as JSON")
	cmd.Flags().StringVar(&flags.movies, "movies", "", "Plex movie library name (empty string skips movies)")
	cmd.Flags().StringVar(&flags.shows, "shows", "", "Plex TV library name (empty string skips shows)")
	cmd.Flags().StringVar(&flags.anime, "anime", "", "Plex anime library name (empty string skips anime)")
	cmd.Flags().StringVar(&flags.plexDB, "plex-db", "", "Read Plex watched state from this library database file")
	cmd.Flags().StringVar(&flags.user, "user", "", "Jellyfin user to update")

	return cmd
}

// applyMigrateFlags overlays explicitly set flags on the loaded config.
func applyMigrateFlags(cmd *cobra.Command, cfg *config.Config, flags migrateFlags) error {
	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Run.Verbose = flags.verbose
	}
	if changed("fail-fast") {
		cfg.Run.FailFast = flags.failFast
	}
	if changed("dry-run") {
		cfg.Run.DryRun = flags.dryRun
	}
	if changed("insecure") {
		cfg.Run.Insecure = flags.insecure
	}
	if changed("movies") {
		cfg.Libraries.Movies = strings.TrimSpace(flags.movies)
	}
	if changed("shows") {
		cfg.Libraries.Shows = strings.TrimSpace(flags.shows)
	}
	if changed("anime") {
		cfg.Libraries.Anime = strings.TrimSpace(flags.anime)
	}
	if changed("plex-db") {
		expanded, err := config.ExpandPath(strings.TrimSpace(flags.plexDB))
		if err != nil {
			return fmt.Errorf("--plex-db: %w", err)
		}
		cfg.Plex.DatabasePath = expanded
	}
	if changed("user") {
		cfg.Jellyfin.User = strings.TrimSpace(flags.user)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, asJSON bool) error {
	lock, err := runlock.Acquire(cfg.Paths.StateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, err := ctx.newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	runCtx, runID := services.NewRunContext(cmd.Context())
	logger = logging.WithContext(runCtx, logger)

	source, closer, err := openSource(cfg, cfg.Run.Insecure)
	if err != nil {
		return err
	}
	defer closer.Close()

	target, err := jellyfin.NewFromConfig(cfg, cfg.Run.Insecure)
	if err != nil {
		return err
	}

	logger.Info("starting migration",
		logging.String("jellyfin_user", cfg.Jellyfin.User),
		logging.Bool("dry_run", cfg.Run.DryRun),
		logging.Bool("fail_fast", cfg.Run.FailFast),
		logging.Bool("plex_database", cfg.UsesPlexDatabase()),
	)

	engine := migrate.NewEngine(source, target, logger)
	rep, runErr := engine.Run(runCtx, migrate.Options{
		User: cfg.Jellyfin.User,
		Libraries: collector.Libraries{
			Movies: cfg.Libraries.Movies,
			Shows:  cfg.Libraries.Shows,
			Anime:  cfg.Libraries.Anime,
		},
		Verbose:         cfg.Run.Verbose,
		FailFast:        cfg.Run.FailFast,
		DryRun:          cfg.Run.DryRun,
		TitleKeyLength:  cfg.Matching.TitleKeyLength,
		SeriesCacheSize: cfg.Matching.SeriesCacheSize,
	})
	partial := errors.Is(runErr, migrate.ErrUnmatched) || errors.Is(runErr, context.Canceled)

	notifier := notifications.NewService(cfg)
	notifyCtx := context.WithoutCancel(runCtx)
	if runErr != nil && !partial {
		if err := notifier.NotifyError(notifyCtx, runErr, "migration"); err != nil {
			logger.Warn("notification failed", logging.Error(err))
		}
		return runErr
	}
	if err := notifier.NotifyMigrationCompleted(notifyCtx, rep, cfg.Run.DryRun); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}

	if asJSON {
		payload := struct {
			RunID   string `json:"run_id"`
			DryRun  bool   `json:"dry_run"`
			Aborted bool   `json:"aborted"`
			Report  any    `json:"report"`
		}{RunID: runID, DryRun: cfg.Run.DryRun, Aborted: runErr != nil, Report: rep}
		if err := writeJSON(cmd, payload); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		renderReport(out, rep, cfg.Run.DryRun, shouldColorize(out))
		if runErr != nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderStatusLine("Run", statusError, "aborted: "+runErr.Error(), shouldColorize(out)))
		}
	}
	return runErr
}
