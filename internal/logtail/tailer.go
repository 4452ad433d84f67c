package logtail

import (
	"context"
	"io"
	"log/slog"

	"github.com/hpcloud/tail"
)

// Line is one line read from a live log, tagged with its source.
type Line struct {
	Source string
	Text   string
}

// Tailer streams lines from a live log file as they are written.
type Tailer struct {
	source    string
	path      string
	poll      bool
	fromStart bool
	logger    *slog.Logger
}

// Option configures a Tailer.
type Option func(*Tailer)

// WithPolling makes the tailer poll the file instead of using inotify.
func WithPolling(poll bool) Option {
	return func(t *Tailer) { t.poll = poll }
}

// FromStart replays the existing content before following new lines.
func FromStart(fromStart bool) Option {
	return func(t *Tailer) { t.fromStart = fromStart }
}

// New creates a Tailer for the given source and file path.
func New(source, path string, logger *slog.Logger, opts ...Option) *Tailer {
	t := &Tailer{
		source: source,
		path:   path,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tail follows the file, reopening it across rotations, and sends each line
// to out until ctx is done.
func (t *Tailer) Tail(ctx context.Context, out chan<- Line) error {
	cfg := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      t.poll,
		Logger:    tail.DiscardingLogger,
	}
	if !t.fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	tf, err := tail.TailFile(t.path, cfg)
	if err != nil {
		return err
	}

	t.logger.Info("tailing log file", slog.String("source", t.source), slog.String("path", t.path))

	for {
		select {
		case <-ctx.Done():
			_ = tf.Stop()
			tf.Cleanup()
			return ctx.Err()
		case line, ok := <-tf.Lines:
			if !ok {
				return tf.Err()
			}
			if line.Err != nil {
				t.logger.Error("tail error", slog.String("source", t.source), slog.String("error", line.Err.Error()))
				continue
			}
			select {
			case out <- Line{Source: t.source, Text: line.Text}:
			case <-ctx.Done():
				_ = tf.Stop()
				tf.Cleanup()
				return ctx.Err()
			}
		}
	}
}
