package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mangoconv/internal/api"
	"github.com/MikeSquared-Agency/mangoconv/internal/config"
)

func newServeCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("mangoconv starting", "port", cfg.Port)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			s, err := openSinks(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			svc, err := newService(cfg, cfg.InputCharset, s)
			if err != nil {
				return err
			}

			var calls api.CallReader
			if s.db != nil {
				calls = s.db
			}
			srv := api.NewServer(api.Config{
				Port:        cfg.Port,
				APIToken:    cfg.APIToken,
				MaxUploadMB: cfg.MaxUploadMB,
			}, svc, calls, slog.Default())

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			slog.Info("mangoconv ready", "port", cfg.Port, "store", s.db != nil, "events", s.hermes != nil)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
				slog.Info("shutting down")
			case err := <-errCh:
				slog.Error("HTTP server error", "error", err)
				return err
			}
			cancel()
			slog.Info("mangoconv stopped")
			return nil
		},
	}
	return cmd
}
