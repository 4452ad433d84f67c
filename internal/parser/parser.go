package parser

import (
	"fmt"

	"github.com/cyra/logaudit/internal/apperrors"
)

// Log sources. The names double as the base of the per-day archive file
// names, e.g. httpd_log.2019-01-19.gz.
const (
	SourceHTTP = "httpd_log"
	SourceSSH  = "sshd_log"
)

// Record is a structured log record extracted from a single line.
type Record interface {
	Source() string
}

// Parser defines the interface implemented by log parsers.
type Parser interface {
	Parse(line string) (Record, error)
	Source() string
}

// ErrUnknownParser is returned when an unsupported parser name is requested.
var ErrUnknownParser = apperrors.NewInvalidArgument("unknown parser")

// Sources lists every log source in the order a day is transformed.
func Sources() []string {
	return []string{SourceHTTP, SourceSSH}
}

// New returns a parser implementation by name.
func New(name string) (Parser, error) {
	switch name {
	case SourceHTTP, "http", "httpd":
		return httpParser{}, nil
	case SourceSSH, "ssh", "sshd":
		return sshParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
}

func noMatch(source, line string) error {
	return apperrors.NewParse(fmt.Sprintf("%s parser: can't extract any info from line: %s", source, line))
}

type httpParser struct{}

func (httpParser) Source() string { return SourceHTTP }

func (httpParser) Parse(line string) (Record, error) {
	rec, err := ParseHTTP(line)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type sshParser struct{}

func (sshParser) Source() string { return SourceSSH }

func (sshParser) Parse(line string) (Record, error) {
	rec, err := ParseSSH(line)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
