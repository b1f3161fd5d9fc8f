package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
	"github.com/MikeSquared-Agency/mangoconv/internal/config"
	"github.com/MikeSquared-Agency/mangoconv/internal/hermes"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
	"github.com/MikeSquared-Agency/mangoconv/internal/metrics"
	"github.com/MikeSquared-Agency/mangoconv/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "mangoconv",
		Short:        "Convert telephony call-record HTML exports into structured data",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newConvertCmd(cfg))
	rootCmd.AddCommand(newParseCmd(cfg))

	return rootCmd
}

// sinks are the optional outputs a parsed call is forwarded to.
type sinks struct {
	db     *store.Store
	hermes *hermes.Client
}

func (s *sinks) Close() {
	if s.hermes != nil {
		s.hermes.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// openSinks connects to Postgres and NATS when they are configured.
func openSinks(ctx context.Context, cfg config.Config) (*sinks, error) {
	s := &sinks{}

	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		s.db = db
		slog.Info("database connected")
	}

	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		s.hermes = hc
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	return s, nil
}

// newService wires the parser, metrics and any open sinks.
func newService(cfg config.Config, charset string, s *sinks) (*ingest.Service, error) {
	loc, err := config.LoadLocale(cfg.LocaleFile, cfg.Timezone)
	if err != nil {
		return nil, err
	}

	opts := []ingest.Option{
		ingest.WithMetrics(metrics.Default()),
		ingest.WithCharset(charset),
	}
	if s != nil && s.db != nil {
		opts = append(opts, ingest.WithStore(s.db))
	}
	if s != nil && s.hermes != nil {
		opts = append(opts, ingest.WithEvents(s.hermes))
	}

	return ingest.New(callparse.NewParser(loc), slog.Default(), opts...), nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
