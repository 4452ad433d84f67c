package batch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/config"
	"github.com/cyra/logaudit/internal/metrics"
	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/parser"
	"github.com/cyra/logaudit/internal/pipeline"
	"github.com/cyra/logaudit/internal/render"
	"github.com/cyra/logaudit/internal/sink"
)

// FileStatus is the outcome of one input archive.
type FileStatus string

const (
	StatusTransformed FileStatus = metrics.FileTransformed
	StatusMissing     FileStatus = metrics.FileMissing
	StatusFailed      FileStatus = metrics.FileFailed
)

// FileResult reports what happened to one <source>.<day>.gz archive.
type FileResult struct {
	Day    string
	Source string
	Input  string
	Output string
	Status FileStatus
	Stats  pipeline.Stats
	Err    error
}

// Summary collects the file results of a run, ordered by day then source.
type Summary struct {
	Range DateRange
	Files []FileResult
}

// Count returns how many files ended with status.
func (s *Summary) Count(status FileStatus) int {
	n := 0
	for _, f := range s.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Lines returns the number of rendered lines across all files.
func (s *Summary) Lines() int {
	n := 0
	for _, f := range s.Files {
		n += f.Stats.Rendered
	}
	return n
}

// Transformer converts the per-day archives of a date range into per-day
// audit logs.
type Transformer struct {
	fs         afero.Fs
	cfg        *config.Config
	renderer   render.Renderer
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

// NewTransformer builds a Transformer reading and writing through fsys.
func NewTransformer(fsys afero.Fs, cfg *config.Config, normalizer *normalize.Normalizer, logger *slog.Logger) (*Transformer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, apperrors.NewInvalidArgument(fmt.Sprintf("output.timezone: %v", err))
	}
	renderer, err := render.New(cfg.Output.Format, loc)
	if err != nil {
		return nil, err
	}
	return &Transformer{
		fs:         fsys,
		cfg:        cfg,
		renderer:   renderer,
		normalizer: normalizer,
		logger:     logger,
	}, nil
}

// Run transforms every day of r, up to transform.workers days at a time.
// Per-file problems are recorded in the summary and never abort the run;
// only context cancellation does.
func (t *Transformer) Run(ctx context.Context, r DateRange) (*Summary, error) {
	days := r.Days()
	perDay := make([][]FileResult, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(t.cfg.Transform.Workers, 1))

	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			results, err := t.TransformDay(gctx, day)
			perDay[i] = results
			return err
		})
	}
	err := g.Wait()

	summary := &Summary{Range: r}
	for _, results := range perDay {
		summary.Files = append(summary.Files, results...)
	}
	return summary, err
}

// TransformDay processes the httpd_log then sshd_log archive of one day into
// that day's output file. The output file is only created once an archive
// is found.
func (t *Transformer) TransformDay(ctx context.Context, day string) ([]FileResult, error) {
	out := &lazyFile{fs: t.fs, path: t.cfg.Output.DailyFile(day)}
	if header, ok := t.renderer.Headers(); ok {
		out.header = header
	}
	defer func() {
		if err := out.Close(); err != nil {
			t.logger.Error("closing audit log", slog.String("path", out.path), slog.String("error", err.Error()))
		}
	}()

	var results []FileResult
	for _, source := range parser.Sources() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := t.transformFile(ctx, day, source, out)
		metrics.FilesTotal.WithLabelValues(source, string(res.Status)).Inc()
		results = append(results, res)

		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return results, res.Err
		}
	}
	return results, nil
}

func (t *Transformer) transformFile(ctx context.Context, day, source string, out *lazyFile) FileResult {
	res := FileResult{
		Day:    day,
		Source: source,
		Input:  t.cfg.Archive(source, day),
		Output: out.path,
	}
	logger := t.logger.With(slog.String("source", source), slog.String("file", res.Input))

	f, err := t.fs.Open(res.Input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = StatusMissing
			res.Err = apperrors.New(apperrors.ErrFileNotFound, "archive not found: "+res.Input, err)
			logger.Warn("Skipping, file not found")
			return res
		}
		return t.failed(logger, res, apperrors.New(apperrors.ErrIO, "opening "+res.Input, err))
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return t.failed(logger, res, apperrors.New(apperrors.ErrIO, "reading archive "+res.Input, err))
	}
	defer gz.Close()

	w, err := out.open()
	if err != nil {
		return t.failed(logger, res, apperrors.New(apperrors.ErrIO, "opening output "+out.path, err))
	}

	p, err := pipeline.New(source, t.normalizer, t.renderer, t.logger)
	if err != nil {
		return t.failed(logger, res, err)
	}

	logger.Info("transforming")
	res.Stats, err = p.Run(ctx, gz, w)
	if err != nil {
		if ctx.Err() != nil {
			res.Status = StatusFailed
			res.Err = err
			return res
		}
		return t.failed(logger, res, err)
	}

	res.Status = StatusTransformed
	logger.Info("transformed",
		slog.Int("lines", res.Stats.Lines),
		slog.Int("rendered", res.Stats.Rendered),
		slog.Int("skipped", res.Stats.Skipped()),
	)
	return res
}

func (t *Transformer) failed(logger *slog.Logger, res FileResult, err error) FileResult {
	res.Status = StatusFailed
	res.Err = err
	logger.Error("file transform failed", slog.String("error", err.Error()))
	return res
}

// lazyFile opens the day's output on first use.
type lazyFile struct {
	mu     sync.Mutex
	fs     afero.Fs
	path   string
	header string
	file   *sink.File
}

func (l *lazyFile) open() (*sink.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file, nil
	}
	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return nil, err
	}
	f, err := sink.OpenFile(l.fs, l.path, l.header)
	if err != nil {
		return nil, err
	}
	l.file = f
	return f, nil
}

func (l *lazyFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
