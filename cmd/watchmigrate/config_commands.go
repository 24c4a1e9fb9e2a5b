package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"watchmigrate/internal/config"
	"watchmigrate/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the Plex token and the Jellyfin api_key and user (or export PLEX_TOKEN, JELLYFIN_API_KEY, JELLYFIN_USER) before migrating.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var check bool
	var insecure bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: "Validate the configuration file and credentials.\n\n" +
			"With --check, also verify directory permissions, reach both servers, " +
			"confirm the configured libraries exist and resolve the Jellyfin user.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			source := cfg.Plex.URL
			if cfg.UsesPlexDatabase() {
				source = cfg.Plex.DatabasePath + fmt.Sprintf(" (account %d)", cfg.Plex.AccountID)
			}
			fmt.Fprintln(out, renderStatusLine("Plex source", statusInfo, source, colorize))
			fmt.Fprintln(out, renderStatusLine("Jellyfin", statusInfo, cfg.Jellyfin.URL+" as "+displayValue(cfg.Jellyfin.User), colorize))
			fmt.Fprintln(out, renderStatusLine("Libraries", statusInfo, fmt.Sprintf("movies=%s shows=%s anime=%s",
				displayValue(cfg.Libraries.Movies), displayValue(cfg.Libraries.Shows), displayValue(cfg.Libraries.Anime)), colorize))
			fmt.Fprintln(out, renderStatusLine("Dry run", statusInfo, yesNo(cfg.Run.DryRun), colorize))

			if err := cfg.ValidateConnections(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Connections", statusError, err.Error(), colorize))
				return err
			}
			fmt.Fprintln(out, renderStatusLine("Connections", statusOK, "credentials present", colorize))

			if check {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				results := preflight.RunAll(cmd.Context(), cfg, insecure || cfg.Run.Insecure)
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("%d preflight check(s) failed", len(failed))
				}
			}

			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Run connectivity and permission checks")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification during checks")
	return cmd
}

func displayValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(skipped)"
	}
	return value
}
