package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cyra/logaudit/internal/config"
	"github.com/cyra/logaudit/internal/metrics"
	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/pipeline"
	"github.com/cyra/logaudit/internal/render"
	"github.com/cyra/logaudit/internal/sink"
)

func newFollowCmd() *cobra.Command {
	var (
		httpdLog string
		sshdLog  string
	)

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Tail the live httpd_log/sshd_log and append audit lines as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *appConfig
			if httpdLog != "" {
				cfg.Follow.HTTPDLog = httpdLog
			}
			if sshdLog != "" {
				cfg.Follow.SSHDLog = sshdLog
			}
			return runFollow(cmd.Context(), &cfg)
		},
	}

	cmd.Flags().StringVar(&httpdLog, "httpd-log", "", "Live httpd_log path (overrides follow.httpd_log)")
	cmd.Flags().StringVar(&sshdLog, "sshd-log", "", "Live sshd_log path (overrides follow.sshd_log)")

	return cmd
}

func runFollow(ctx context.Context, cfg *config.Config) error {
	store := config.NewStore(cfg)

	if configPath != "" {
		// Tailed paths are fixed at start; reloads only change rendering.
		stop, err := config.WatchFile(configPath, store, logger, func(*config.Config) {
			metrics.ConfigReloads.Inc()
		})
		if err != nil {
			logger.Error("config watcher disabled", slog.String("error", err.Error()))
		} else {
			defer stop()
		}
	}

	path := cfg.Output.LiveFile()
	if err := appFs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	header := ""
	if r, err := render.New(cfg.Output.Format, nil); err == nil {
		if h, ok := r.Headers(); ok {
			header = h
		}
	}
	out, err := sink.OpenFile(appFs, path, header)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("closing audit log", slog.String("error", err.Error()))
		}
	}()

	logger.Info("logaudit follow starting",
		slog.String("version", version),
		slog.String("output", path),
		slog.String("format", cfg.Output.Format),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Listen, logger)
		})
	}
	g.Go(func() error {
		return pipeline.Follow(gctx, store, normalize.New(), logger, out)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
