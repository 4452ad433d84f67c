package render

import (
	"fmt"
	"time"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/audit"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Renderer turns an audit event into one output line.
type Renderer interface {
	Render(ev *audit.Event) (string, error)
	// RenderAs renders ev declaring kind as its type where the format has
	// a type discriminator.
	RenderAs(ev *audit.Event, kind audit.Kind) (string, error)
	// Headers returns the line to emit once before the first event, if any.
	Headers() (string, bool)
}

// ErrUnknownFormat is returned when an unsupported output format is requested.
var ErrUnknownFormat = apperrors.NewInvalidArgument("unknown output format")

// New returns a renderer by format name. loc is the zone CSV timestamps are
// printed in; nil means UTC.
func New(format string, loc *time.Location) (Renderer, error) {
	switch format {
	case FormatCSV, "":
		return NewCSV(WithLocation(loc)), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// safely turns a panic inside a formatter into a render error.
func safely(ev *audit.Event, fn func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = apperrors.NewRender(fmt.Sprintf("formatting event %s", eventID(ev)), fmt.Errorf("%v", r))
		}
	}()
	if ev == nil {
		return "", apperrors.NewRender("nil event", nil)
	}
	return fn()
}

func eventID(ev *audit.Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.UUID.String()
}
