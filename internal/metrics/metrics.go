package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Line outcomes.
const (
	OutcomeRendered       = "rendered"
	OutcomeParseError     = "parse_error"
	OutcomeNormalizeError = "normalize_error"
	OutcomeRenderError    = "render_error"
	OutcomeWriteError     = "write_error"
)

// File outcomes.
const (
	FileTransformed = "transformed"
	FileMissing     = "missing"
	FileFailed      = "failed"
)

var (
	LinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logaudit_lines_total",
		Help: "Log lines processed, by source and outcome",
	}, []string{"source", "outcome"})

	FilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logaudit_files_total",
		Help: "Daily log archives processed, by source and status",
	}, []string{"source", "status"})

	ConfigReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logaudit_config_reloads_total",
		Help: "Successful configuration reloads",
	})
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
