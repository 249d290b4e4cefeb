package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"newspost/internal/api"
	"newspost/internal/config"
)

type createCmdOptions struct {
	description string
	imagePath   string
	filePath    string
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a post, optionally with an image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, imagePath, err := buildCreateRequest(cmd, opts, args)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				post, err := client.CreatePost(cmd.Context(), req, imagePath)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(post)
				}
				return writePlain("%d\n", post.ID)
			})
		},
	}

	bindCreateFlags(cmd, opts)
	return cmd
}

func bindCreateFlags(cmd *cobra.Command, opts *createCmdOptions) {
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "post description")
	cmd.Flags().StringVarP(&opts.imagePath, "image", "i", "", "image file to upload")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "markdown file with YAML front matter (title, description, image)")
}

// buildCreateRequest merges the markdown file (if any) with flags and args.
// Flags and the title argument win over front matter.
func buildCreateRequest(cmd *cobra.Command, opts *createCmdOptions, args []string) (api.CreatePostRequest, string, error) {
	var (
		title       string
		description string
		imagePath   string
	)

	if opts.filePath != "" {
		data, err := os.ReadFile(opts.filePath)
		if err != nil {
			return api.CreatePostRequest{}, "", err
		}
		post, err := parseMarkdown(string(data))
		if err != nil {
			return api.CreatePostRequest{}, "", fmt.Errorf("%s: %w", opts.filePath, err)
		}
		title = post.Title
		description = post.description()
		imagePath = post.imagePath(opts.filePath)
	}

	if len(args) > 0 {
		title = args[0]
	}
	if cmd.Flags().Changed("description") {
		description = opts.description
	}
	if cmd.Flags().Changed("image") {
		imagePath = opts.imagePath
	}

	if strings.TrimSpace(title) == "" {
		return api.CreatePostRequest{}, "", errors.New("title is required")
	}

	req := api.CreatePostRequest{Title: title}
	if description != "" {
		req.Description = &description
	}
	return req, imagePath, nil
}
