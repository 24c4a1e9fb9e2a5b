package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"watchmigrate/internal/plexdb"
	"watchmigrate/internal/services/plex"
)

func newPlexCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plex",
		Short: "Inspect the Plex source",
	}

	cmd.AddCommand(newPlexSectionsCommand(ctx))

	return cmd
}

func newPlexSectionsCommand(ctx *commandContext) *cobra.Command {
	var insecure bool

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List Plex library sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var rows [][]string
			if cfg.UsesPlexDatabase() {
				store, err := plexdb.Open(cfg.Plex.DatabasePath, cfg.Plex.AccountID)
				if err != nil {
					return err
				}
				defer store.Close()
				sections, err := store.Sections(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range sections {
					rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name, sectionTypeName(s.Type)})
				}
			} else {
				client, err := plex.NewFromConfig(cfg, insecure || cfg.Run.Insecure)
				if err != nil {
					return err
				}
				sections, err := client.Sections(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range sections {
					rows = append(rows, []string{s.Key, s.Title, s.Type})
				}
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No library sections found")
				return nil
			}
			fmt.Fprintln(out, renderTable("", []string{"Key", "Title", "Type"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	return cmd
}

func sectionTypeName(sectionType int) string {
	switch sectionType {
	case 1:
		return "movie"
	case 2:
		return "show"
	case 8:
		return "artist"
	case 13:
		return "photo"
	default:
		return strconv.Itoa(sectionType)
	}
}
