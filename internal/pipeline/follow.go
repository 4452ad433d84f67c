package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/config"
	"github.com/cyra/logaudit/internal/logtail"
	"github.com/cyra/logaudit/internal/metrics"
	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/parser"
	"github.com/cyra/logaudit/internal/render"
	"github.com/cyra/logaudit/internal/sink"
)

type flusher interface {
	Flush() error
}

// Follow tails the live logs named in the current config and appends every
// rendered event to out until ctx is done. Lines from all sources go through
// a single consumer, so out has one writer. The renderer is rebuilt whenever
// a config reload changes output.format or output.timezone.
func Follow(ctx context.Context, store *config.Store, normalizer *normalize.Normalizer, logger *slog.Logger, out sink.Writer) error {
	cfg := store.Current()

	sources := map[string]string{
		parser.SourceHTTP: cfg.Follow.HTTPDLog,
		parser.SourceSSH:  cfg.Follow.SSHDLog,
	}

	lines := make(chan logtail.Line, 100)
	g, gctx := errgroup.WithContext(ctx)

	tailing := 0
	for _, source := range parser.Sources() {
		path := sources[source]
		if path == "" {
			continue
		}
		tailing++
		t := logtail.New(source, path, logger,
			logtail.WithPolling(cfg.Follow.Poll),
			logtail.FromStart(cfg.Follow.FromStart),
		)
		g.Go(func() error {
			if err := t.Tail(gctx, lines); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if tailing == 0 {
		return apperrors.NewInvalidArgument("no live log configured: set follow.httpd_log or follow.sshd_log")
	}

	g.Go(func() error {
		return consume(gctx, store, normalizer, logger, lines, out)
	})

	return g.Wait()
}

func consume(ctx context.Context, store *config.Store, normalizer *normalize.Normalizer, logger *slog.Logger, lines <-chan logtail.Line, out sink.Writer) error {
	var (
		current   string
		pipelines map[string]*Pipeline
		stats     Stats
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-lines:
			cfg := store.Current()
			key := cfg.Output.Format + "|" + cfg.Output.Timezone
			if key != current {
				built, err := buildPipelines(cfg, normalizer, logger)
				if err != nil {
					logger.Error("renderer unavailable, keeping previous", slog.String("error", err.Error()))
					if pipelines == nil {
						return err
					}
				} else {
					if current != "" {
						logger.Info("output renderer changed", slog.String("format", cfg.Output.Format))
					}
					pipelines, current = built, key
				}
			}

			p, ok := pipelines[line.Source]
			if !ok {
				continue
			}
			if line.Text == "" {
				continue
			}
			stats.Lines++
			rendered, ok := p.handle(line.Text, &stats)
			if !ok {
				continue
			}
			if err := out.Write(rendered); err != nil {
				metrics.LinesTotal.WithLabelValues(line.Source, metrics.OutcomeWriteError).Inc()
				return apperrors.New(apperrors.ErrIO, "writing audit line", err)
			}
			if f, ok := out.(flusher); ok {
				if err := f.Flush(); err != nil {
					return apperrors.New(apperrors.ErrIO, "flushing audit log", err)
				}
			}
			stats.Rendered++
		}
	}
}

func buildPipelines(cfg *config.Config, normalizer *normalize.Normalizer, logger *slog.Logger) (map[string]*Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(cfg.Output.Format, loc)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Pipeline, 2)
	for _, source := range parser.Sources() {
		p, err := New(source, normalizer, renderer, logger)
		if err != nil {
			return nil, err
		}
		out[source] = p
	}
	return out, nil
}
