package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/pipeline"
	"github.com/cyra/logaudit/internal/render"
	"github.com/cyra/logaudit/internal/sink"
)

func newConvertCmd() *cobra.Command {
	var (
		source  string
		input   string
		format  string
		noHeads bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Render a single log file (or stdin) to stdout",
		Example: `  logaudit convert --source sshd_log --input sshd_log.2019-01-23.gz
  tail -n 100 httpd_log | logaudit convert --source httpd_log --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat := format
			if outFormat == "" {
				outFormat = appConfig.Output.Format
			}
			loc, err := appConfig.Location()
			if err != nil {
				return err
			}
			renderer, err := render.New(outFormat, loc)
			if err != nil {
				return err
			}

			p, err := pipeline.New(source, normalize.New(), renderer, logger)
			if err != nil {
				return err
			}

			r, closeInput, err := openInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			defer closeInput()

			out := newLineWriter(cmd.OutOrStdout())
			defer out.Close()

			if header, ok := renderer.Headers(); ok && !noHeads {
				if err := out.Write(header); err != nil {
					return err
				}
			}

			stats, err := p.Run(cmd.Context(), r, out)
			if err != nil {
				return err
			}
			logger.Debug("convert complete",
				slog.String("source", p.Source()),
				slog.Int("lines", stats.Lines),
				slog.Int("rendered", stats.Rendered),
				slog.Int("skipped", stats.Skipped()),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Log source: httpd_log or sshd_log")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file; .gz is decompressed (stdin when empty)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: csv or json (overrides output.format)")
	cmd.Flags().BoolVar(&noHeads, "no-header", false, "Do not print the CSV header line")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

// openInput opens path through appFs, or returns stdin when path is empty.
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}

	f, err := appFs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { _ = f.Close() }, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open input %s: %w", path, err)
	}
	return gz, func() {
		_ = gz.Close()
		_ = f.Close()
	}, nil
}

// lineWriter adapts an io.Writer to sink.Writer.
type lineWriter struct {
	w *bufio.Writer
}

var _ sink.Writer = (*lineWriter)(nil)

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (l *lineWriter) Write(line string) error {
	if _, err := l.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return nil
}

func (l *lineWriter) Close() error {
	return l.w.Flush()
}
