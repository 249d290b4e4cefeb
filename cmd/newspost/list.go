package main

import (
	"github.com/spf13/cobra"

	"newspost/internal/api"
	"newspost/internal/config"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List posts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				posts, err := client.ListPosts(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(posts)
				}
				return writePostList(posts)
			})
		},
	}
}
