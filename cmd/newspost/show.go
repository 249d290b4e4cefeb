package main

import (
	"github.com/spf13/cobra"

	"newspost/internal/api"
	"newspost/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one post",
		Args:  requirePostID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				post, err := client.GetPost(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(post)
				}
				return writePostDetail(post)
			})
		},
	}
}
