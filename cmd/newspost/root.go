package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newspost/internal/config"
	"newspost/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput   bool
		outputFormat string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:           "newspost",
		Short:         "Newspost is a small news post service with image uploads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}

			if outputFormat != "" {
				formatter, err := format.New(outputFormat)
				if err != nil {
					return err
				}
				outputFormatter = formatter
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "", "structured output format: json or yaml (implies --json)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newListCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newCreateCmd(cfg, &jsonOutput),
		newDeleteCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
	)

	return cmd
}
