package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newspost/internal/blobstore"
	"newspost/internal/config"
	"newspost/internal/server"
	"newspost/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the newspost API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, backend, err := store.OpenFromConfig(ctx, cfg.DBPath, cfg.DBURL)
			if err != nil {
				return err
			}
			defer st.Close()
			if backend == "sqlite" {
				logger.Info("opened database", "backend", backend, "path", cfg.DBPath)
			} else {
				logger.Info("opened database", "backend", backend)
			}

			blobs, err := blobstore.NewLocalDir(cfg.UploadsDir)
			if err != nil {
				return fmt.Errorf("init uploads dir: %w", err)
			}
			logger.Info("serving uploads", "dir", blobs.Root())
			if cfg.PublicDir != "" {
				logger.Info("serving frontend from disk", "dir", cfg.PublicDir)
			}

			srv := server.New(cfg.ListenAddr(), st, blobs, logger, server.Options{
				PublicDir:          cfg.PublicDir,
				MaxUploadBytes:     cfg.Uploads.MaxUploadBytes,
				MultipartMaxMemory: cfg.Uploads.MultipartMaxMemory,
			})
			return srv.ListenAndServe(ctx)
		},
	}
}
