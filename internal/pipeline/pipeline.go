package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/metrics"
	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/parser"
	"github.com/cyra/logaudit/internal/render"
	"github.com/cyra/logaudit/internal/sink"
)

// maxLineSize bounds a single log line; longer lines fail the file.
const maxLineSize = 1024 * 1024

// Pipeline turns the lines of one log source into rendered audit lines.
type Pipeline struct {
	parser     parser.Parser
	normalizer *normalize.Normalizer
	renderer   render.Renderer
	logger     *slog.Logger
}

// New builds a pipeline for the named source ("httpd_log" or "sshd_log").
func New(source string, normalizer *normalize.Normalizer, renderer render.Renderer, logger *slog.Logger) (*Pipeline, error) {
	p, err := parser.New(source)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		parser:     p,
		normalizer: normalizer,
		renderer:   renderer,
		logger:     logger.With(slog.String("source", p.Source())),
	}, nil
}

// Source returns the log source this pipeline reads.
func (p *Pipeline) Source() string {
	return p.parser.Source()
}

// Process parses, normalizes and renders a single line. The returned error
// is a parse, normalize or render *apperrors.AppError.
func (p *Pipeline) Process(line string) (string, error) {
	rec, err := p.parser.Parse(line)
	if err != nil {
		return "", err
	}

	ev, err := p.normalizer.Normalize(rec)
	if err != nil {
		return "", err
	}

	out, err := p.renderer.Render(ev)
	if err != nil {
		return "", err
	}
	return out, nil
}

// Stats counts what happened to the lines of one input.
type Stats struct {
	Lines           int
	Rendered        int
	ParseErrors     int
	NormalizeErrors int
	RenderErrors    int
}

// Skipped is the number of lines that produced no output.
func (s Stats) Skipped() int {
	return s.ParseErrors + s.NormalizeErrors + s.RenderErrors
}

// Run processes r line by line in order and writes each rendered event to
// out. Bad lines are logged and skipped. Run stops early only when ctx is
// done, the input cannot be read, or out rejects a write.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, out sink.Writer) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		rendered, ok := p.handle(line, &stats)
		if !ok {
			continue
		}
		if err := out.Write(rendered); err != nil {
			metrics.LinesTotal.WithLabelValues(p.Source(), metrics.OutcomeWriteError).Inc()
			return stats, apperrors.New(apperrors.ErrIO, "writing audit line", err)
		}
		stats.Rendered++
	}

	if err := scanner.Err(); err != nil {
		return stats, apperrors.New(apperrors.ErrIO, fmt.Sprintf("reading %s input", p.Source()), err)
	}
	return stats, nil
}

// handle runs Process and accounts for the outcome.
func (p *Pipeline) handle(line string, stats *Stats) (string, bool) {
	rendered, err := p.Process(line)
	if err == nil {
		metrics.LinesTotal.WithLabelValues(p.Source(), metrics.OutcomeRendered).Inc()
		return rendered, true
	}

	outcome := metrics.OutcomeParseError
	switch apperrors.TypeOf(err) {
	case apperrors.ErrNormalize:
		stats.NormalizeErrors++
		outcome = metrics.OutcomeNormalizeError
	case apperrors.ErrRender:
		stats.RenderErrors++
		outcome = metrics.OutcomeRenderError
	default:
		stats.ParseErrors++
	}
	metrics.LinesTotal.WithLabelValues(p.Source(), outcome).Inc()

	p.logger.Warn("skipping line",
		slog.String("reason", outcome),
		slog.String("error", err.Error()),
		slog.String("line", line),
	)
	return "", false
}
