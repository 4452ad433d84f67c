package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cyra/logaudit/internal/batch"
	"github.com/cyra/logaudit/internal/normalize"
)

func newTransformCmd() *cobra.Command {
	var (
		from    string
		until   string
		workers int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform the daily httpd_log/sshd_log archives of a date range",
		Example: `  logaudit transform --from 2019-01-19 --until 2019-01-23
  logaudit transform --from 2019-01-19 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := batch.ParseDateRange(from, until)
			if err != nil {
				return err
			}

			cfg := *appConfig
			if workers > 0 {
				cfg.Transform.Workers = workers
			}
			if format != "" {
				cfg.Output.Format = format
			}

			t, err := batch.NewTransformer(appFs, &cfg, normalize.New(), logger)
			if err != nil {
				return err
			}

			logger.Info("transforming logs",
				slog.String("range", r.String()),
				slog.String("logs_dir", cfg.LogsDir),
				slog.String("format", cfg.Output.Format),
			)
			summary, err := t.Run(cmd.Context(), r)
			if err != nil {
				return err
			}

			logger.Info("transform complete",
				slog.Int("transformed", summary.Count(batch.StatusTransformed)),
				slog.Int("missing", summary.Count(batch.StatusMissing)),
				slog.Int("failed", summary.Count(batch.StatusFailed)),
				slog.Int("lines", summary.Lines()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Transformed HTTP and SSH logs from %s until %s\n",
				r.From.Format(batch.DayLayout), r.Until.Format(batch.DayLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day to transform (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Last day to transform (YYYY-MM-DD, defaults to --from)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Days processed in parallel (overrides transform.workers)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or json (overrides output.format)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
