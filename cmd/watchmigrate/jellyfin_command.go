package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchmigrate/internal/services/jellyfin"
)

func newJellyfinCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jellyfin",
		Short: "Inspect the Jellyfin target",
	}

	cmd.AddCommand(newJellyfinUsersCommand(ctx))

	return cmd
}

func newJellyfinUsersCommand(ctx *commandContext) *cobra.Command {
	var insecure bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List Jellyfin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := jellyfin.NewFromConfig(cfg, insecure || cfg.Run.Insecure)
			if err != nil {
				return err
			}
			users, err := client.Users(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found")
				return nil
			}
			rows := make([][]string, len(users))
			for i, u := range users {
				rows[i] = []string{u.Name, u.ID, yesNo(u.Name == cfg.Jellyfin.User)}
			}
			fmt.Fprintln(out, renderTable("", []string{"Name", "ID", "Configured"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	return cmd
}
