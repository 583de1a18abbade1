package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arango-etl/internal/api"
	"arango-etl/internal/checkpoint"
	"arango-etl/internal/config"
	"arango-etl/internal/filestore"
	"arango-etl/internal/pipeline"
	"arango-etl/internal/sink"
	"arango-etl/internal/tracker"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "arango-etl",
		Short:         "Ingest proof-of-coverage files from S3 into ArangoDB",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")

	root.AddCommand(historyCmd(), rehydrateCmd(), currentCmd())

	if err := root.Execute(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func historyCmd() *cobra.Command {
	var afterStr, beforeStr string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Backfill a bounded time range (inclusive on both ends)",
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := parseTime(afterStr)
			if err != nil {
				return fmt.Errorf("invalid --after: %w", err)
			}
			before, err := parseTime(beforeStr)
			if err != nil {
				return fmt.Errorf("invalid --before: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			engine, cleanup, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := engine.ProcessRange(ctx, after, before)
			if err != nil {
				return fmt.Errorf("history run aborted: %w", err)
			}
			logrus.Infof("history run finished | %s", summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&afterStr, "after", "", "start of the window (inclusive), e.g. 2023-11-01T00:00:00")
	cmd.Flags().StringVar(&beforeStr, "before", "", "end of the window (inclusive)")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("before")
	return cmd
}

func rehydrateCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "rehydrate",
		Short: "Reprocess one UTC day",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			engine, cleanup, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := engine.ProcessDay(ctx, date)
			if err != nil {
				return fmt.Errorf("rehydrate run aborted: %w", err)
			}
			logrus.Infof("rehydrate run finished | %s", summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "UTC day to rehydrate, e.g. 2023-11-01")
	cmd.MarkFlagRequired("date")
	return cmd
}

func currentCmd() *cobra.Command {
	var afterStr string

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Continuously tail new files, resuming from the stored watermark",
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := parseTime(afterStr)
			if err != nil {
				return fmt.Errorf("invalid --after: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			setupLogging(cfg)

			engine, cleanup, err := buildEngineFromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			tr := tracker.New(engine, cfg.Interval(), after)

			if cfg.APIPort > 0 {
				srv := api.NewServer(cfg.Stream)
				tr.OnTick = srv.RecordTick
				go func() {
					if err := srv.Run(cfg.APIPort); err != nil {
						logrus.Errorf("status API stopped: %v", err)
					}
				}()
			}

			return tr.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&afterStr, "after", "", "timestamp to start tailing from on a fresh stream")
	cmd.MarkFlagRequired("after")
	return cmd
}

// buildEngine loads the config and assembles the engine. Bounded subcommands
// use this; current loads the config itself because it also needs the tick
// interval and API port.
func buildEngine(ctx context.Context) (*tracker.Engine, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg)
	return buildEngineFromConfig(ctx, cfg)
}

func buildEngineFromConfig(ctx context.Context, cfg *config.Config) (*tracker.Engine, func(), error) {
	cleanup := func() {}

	store, err := filestore.NewS3Store(ctx, cfg.S3, cfg.Stream, cfg.Retry)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise file store: %w", err)
	}

	var cp checkpoint.Store
	if cfg.Checkpoint.RedisAddr != "" {
		rds := checkpoint.NewRedis(cfg.Checkpoint.RedisAddr, cfg.Checkpoint.RedisPoolSize, cfg.Window())
		if err := rds.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("checkpoint store unreachable: %w", err)
		}
		cp = rds
		cleanup = func() { rds.Close() }
	} else {
		logrus.Warn("no redis configured, checkpoint state will not survive restarts")
		cp = checkpoint.NewMemory(cfg.Window())
	}

	var dest sink.Sink
	switch cfg.Storage.Type {
	case "arangodb":
		s, err := sink.NewArangoSink(ctx, cfg.Storage.Arango)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialise arangodb sink: %w", err)
		}
		dest = s
	case "file":
		s, err := sink.NewFileSink(cfg.Storage.File.OutputDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialise file sink: %w", err)
		}
		dest = s
	}

	// Wrap the chosen sink with automatic retry logic.
	dest = sink.NewRetrySink(dest, cfg.Retry.Attempts, cfg.Retry.DelayMS)

	loader := sink.NewLoader(dest)
	pipe := pipeline.New(store, loader, cfg.Workers)
	return tracker.NewEngine(cfg.Stream, store, cp, pipe, cfg.Window()), cleanup, nil
}

func setupLogging(cfg *config.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// signalContext returns a context cancelled by SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("interrupt received, shutting down gracefully…")
		cancel()
	}()
	return ctx, cancel
}

// parseTime accepts the formats operators actually paste.
func parseTime(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
